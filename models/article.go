package models

import "encoding/json"

// FlexString decodes a JSON string or number into its text form.
// The portal is inconsistent about which one it sends for areas and prices.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		// objects, arrays and booleans carry nothing we can use
		*f = ""
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// RawArticle is one entry of the portal's articleList response.
type RawArticle struct {
	ArticleNo        FlexString `json:"articleNo"`
	DealOrWarrantPrc FlexString `json:"dealOrWarrantPrc"`
	RentPrc          FlexString `json:"rentPrc"`
	Area1            FlexString `json:"area1"`
	Area2            FlexString `json:"area2"`
	FloorInfo        string     `json:"floorInfo"`
	Direction        string     `json:"direction"`
	ArticleName      string     `json:"articleName"`
	RealtorName      string     `json:"realtorName"`
	ConfirmYmd       FlexString `json:"articleConfirmYmd"`
	FeatureDesc      string     `json:"articleFeatureDesc"`
	TagList          []string   `json:"tagList"`
}

// ArticlePage is one page of the articles endpoint as returned by the in-page fetch.
type ArticlePage struct {
	Status      int          `json:"_status"`
	Error       string       `json:"_error"`
	ArticleList []RawArticle `json:"articleList"`
	IsMoreData  bool         `json:"isMoreData"`
}
