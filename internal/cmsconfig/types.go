package cmsconfig

import (
	"encoding/json"
	"sort"
)

// DefaultPerPage is the list page size used when perPage is not configured.
const DefaultPerPage = 25

// SiteItemType is the discriminator of a site navigation entry.
type SiteItemType string

const SiteItemTypeRecord SiteItemType = "Record"

// FieldType is the discriminator of a list field.
type FieldType string

const FieldTypeString FieldType = "String"

// CmsConfig is the validated configuration. It is built once by Parse and
// treated as read-only afterwards.
type CmsConfig struct {
	Site    []SiteItemConfig        `json:"site"`
	Records map[string]RecordConfig `json:"records"`
}

// SiteItemConfig is a navigation entry. Implementations are limited to this
// package.
type SiteItemConfig interface {
	SiteItemType() SiteItemType
	isSiteItem()
}

// RecordSiteItem links the navigation to a record list view.
type RecordSiteItem struct {
	Name  string
	Label string
}

func (RecordSiteItem) SiteItemType() SiteItemType { return SiteItemTypeRecord }

func (RecordSiteItem) isSiteItem() {}

func (i RecordSiteItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  SiteItemType `json:"type"`
		Name  string       `json:"name"`
		Label string       `json:"label"`
	}{SiteItemTypeRecord, i.Name, i.Label})
}

// RecordConfig describes one record collection declared under "records".
type RecordConfig struct {
	RecordName string         `json:"recordName"`
	RecordType string         `json:"recordType"`
	List       ListPageConfig `json:"list"`
}

// ListPageConfig drives the list view of a record.
type ListPageConfig struct {
	Label   string        `json:"label"`
	PerPage int           `json:"perPage"`
	Fields  []FieldConfig `json:"fields"`
}

// FieldConfig is a column of a list view. Implementations are limited to this
// package.
type FieldConfig interface {
	FieldType() FieldType
	FieldName() string
	FieldLabel() string
	isField()
}

// StringField displays an attribute as plain text.
type StringField struct {
	Name  string
	Label string
}

func (StringField) FieldType() FieldType { return FieldTypeString }

func (f StringField) FieldName() string { return f.Name }

func (f StringField) FieldLabel() string { return f.Label }

func (StringField) isField() {}

func (f StringField) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  FieldType `json:"type"`
		Name  string    `json:"name"`
		Label string    `json:"label"`
	}{FieldTypeString, f.Name, f.Label})
}

// Record returns the record declared under name.
func (c CmsConfig) Record(name string) (RecordConfig, bool) {
	rc, ok := c.Records[name]
	return rc, ok
}

// RecordNames returns the declared record names in lexical order.
func (c CmsConfig) RecordNames() []string {
	names := make([]string, 0, len(c.Records))
	for name := range c.Records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
