package cmsconfig

import (
	"github.com/eugenenazirov/cms-admin/internal/document"
)

// Document renders c back into the untyped input shape with every default
// made explicit. Parsing the result yields a CmsConfig equal to c.
func (c CmsConfig) Document() document.Value {
	site := make([]document.Value, 0, len(c.Site))
	for _, item := range c.Site {
		site = append(site, siteItemDocument(item))
	}

	records := make([]document.Entry, 0, len(c.Records))
	for _, name := range c.RecordNames() {
		records = append(records, document.Entry{Key: name, Value: c.Records[name].document()})
	}

	return document.Mapping(
		document.Entry{Key: "site", Value: document.Sequence(site...)},
		document.Entry{Key: "records", Value: document.Mapping(records...)},
	)
}

func siteItemDocument(item SiteItemConfig) document.Value {
	switch it := item.(type) {
	case RecordSiteItem:
		return document.Mapping(
			document.Entry{Key: "type", Value: document.String(string(SiteItemTypeRecord))},
			document.Entry{Key: "name", Value: document.String(it.Name)},
			document.Entry{Key: "label", Value: document.String(it.Label)},
		)
	default:
		return document.Null()
	}
}

func (r RecordConfig) document() document.Value {
	fields := make([]document.Value, 0, len(r.List.Fields))
	for _, f := range r.List.Fields {
		fields = append(fields, document.Mapping(
			document.Entry{Key: "type", Value: document.String(string(f.FieldType()))},
			document.Entry{Key: "name", Value: document.String(f.FieldName())},
			document.Entry{Key: "label", Value: document.String(f.FieldLabel())},
		))
	}

	return document.Mapping(
		document.Entry{Key: "recordType", Value: document.String(r.RecordType)},
		document.Entry{Key: "list", Value: document.Mapping(
			document.Entry{Key: "label", Value: document.String(r.List.Label)},
			document.Entry{Key: "perPage", Value: document.Int(int64(r.List.PerPage))},
			document.Entry{Key: "fields", Value: document.Sequence(fields...)},
		)},
	)
}
