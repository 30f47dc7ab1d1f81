package cmsconfig

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/eugenenazirov/cms-admin/internal/document"
)

// ParseYAML decodes a YAML or JSON document and parses it. Syntax errors are
// returned wrapped, not as *ConfigError.
func ParseYAML(data []byte) (CmsConfig, error) {
	raw, err := document.FromYAML(data)
	if err != nil {
		return CmsConfig{}, fmt.Errorf("decode document: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw and applies defaults. It is safe for concurrent use.
func Parse(raw document.Value) (CmsConfig, error) {
	return parseTopLevel(raw)
}

// Humanize turns a snake_case identifier into a label: underscores become
// spaces and the first character is upper-cased. A leading byte that is not
// valid UTF-8 is left as is.
func Humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || (r == utf8.RuneError && size == 1) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func parseTopLevel(raw document.Value) (CmsConfig, error) {
	if raw.Kind() != document.KindMapping {
		return CmsConfig{}, missingField("", "config document must be a mapping with \"site\" and \"records\", got %s", raw.Kind())
	}

	site, err := requireContainer(raw, "site", document.KindSequence, "")
	if err != nil {
		return CmsConfig{}, err
	}
	records, err := requireContainer(raw, "records", document.KindMapping, "")
	if err != nil {
		return CmsConfig{}, err
	}

	items, err := parseSiteList(site, path("site"))
	if err != nil {
		return CmsConfig{}, err
	}

	parsed := make(map[string]RecordConfig, records.Len())
	for _, entry := range records.Entries() {
		rc, err := parseRecordConfig(entry.Key, entry.Value, path("records").key(entry.Key))
		if err != nil {
			return CmsConfig{}, err
		}
		parsed[entry.Key] = rc
	}

	return CmsConfig{Site: items, Records: parsed}, nil
}

func parseSiteList(raw document.Value, p path) ([]SiteItemConfig, error) {
	items := make([]SiteItemConfig, 0, raw.Len())
	for i, item := range raw.Items() {
		parsed, err := parseSiteItem(item, p.index(i))
		if err != nil {
			return nil, err
		}
		items = append(items, parsed)
	}
	return items, nil
}

func parseSiteItem(raw document.Value, p path) (SiteItemConfig, error) {
	if raw.Kind() != document.KindMapping {
		return nil, invalidShape(p, "site item must be a mapping, got %s", raw.Kind())
	}

	tag, _ := raw.Lookup("type")
	switch tagName(tag) {
	case string(SiteItemTypeRecord):
		name, err := requireString(raw, "name", p)
		if err != nil {
			return nil, err
		}
		label, err := optionalString(raw, "label", p)
		if err != nil {
			return nil, err
		}
		if label == "" {
			label = Humanize(name)
		}
		return RecordSiteItem{Name: name, Label: label}, nil
	default:
		return nil, unknownVariant(p.key("type"), "unknown site config type: %s", tag)
	}
}

func parseRecordConfig(recordName string, raw document.Value, p path) (RecordConfig, error) {
	if raw.Kind() != document.KindMapping {
		return RecordConfig{}, invalidShape(p, "record config must be a mapping, got %s", raw.Kind())
	}

	recordType, err := optionalString(raw, "recordType", p)
	if err != nil {
		return RecordConfig{}, err
	}
	if recordType == "" {
		recordType = recordName
	}

	list, err := requireContainer(raw, "list", document.KindMapping, p)
	if err != nil {
		return RecordConfig{}, err
	}
	listConfig, err := parseListPageConfig(recordName, list, p.key("list"))
	if err != nil {
		return RecordConfig{}, err
	}

	return RecordConfig{
		RecordName: recordName,
		RecordType: recordType,
		List:       listConfig,
	}, nil
}

func parseListPageConfig(recordName string, raw document.Value, p path) (ListPageConfig, error) {
	label, err := optionalString(raw, "label", p)
	if err != nil {
		return ListPageConfig{}, err
	}
	if label == "" {
		label = Humanize(recordName)
	}

	perPage, err := parsePerPage(raw, p)
	if err != nil {
		return ListPageConfig{}, err
	}

	rawFields, err := requireContainer(raw, "fields", document.KindSequence, p)
	if err != nil {
		return ListPageConfig{}, err
	}
	fields := make([]FieldConfig, 0, rawFields.Len())
	for i, item := range rawFields.Items() {
		field, err := parseFieldConfig(item, p.key("fields").index(i))
		if err != nil {
			return ListPageConfig{}, err
		}
		fields = append(fields, field)
	}

	return ListPageConfig{Label: label, PerPage: perPage, Fields: fields}, nil
}

// parsePerPage rejects explicit values that are not positive integers.
func parsePerPage(raw document.Value, p path) (int, error) {
	value, ok := raw.Lookup("perPage")
	if !ok || value.IsNull() {
		return DefaultPerPage, nil
	}
	n, ok := value.AsInt()
	if !ok {
		return 0, invalidShape(p.key("perPage"), "perPage must be an integer, got %s", value.Kind())
	}
	if n <= 0 || n > maxPerPage {
		return 0, invalidShape(p.key("perPage"), "perPage must be a positive integer, got %d", n)
	}
	return int(n), nil
}

const maxPerPage = 1<<31 - 1

func parseFieldConfig(raw document.Value, p path) (FieldConfig, error) {
	if raw.Kind() != document.KindMapping {
		return nil, invalidShape(p, "field config must be a mapping, got %s", raw.Kind())
	}

	tag, _ := raw.Lookup("type")
	switch tagName(tag) {
	case string(FieldTypeString):
		name, err := requireString(raw, "name", p)
		if err != nil {
			return nil, err
		}
		label, err := optionalString(raw, "label", p)
		if err != nil {
			return nil, err
		}
		if label == "" {
			label = Humanize(name)
		}
		return StringField{Name: name, Label: label}, nil
	default:
		return nil, unknownVariant(p.key("type"), "unknown field config type: %s", tag)
	}
}

// tagName returns the discriminator text, or "" when the tag is absent or not
// a string so that it never matches a known variant.
func tagName(tag document.Value) string {
	s, ok := tag.AsString()
	if !ok {
		return ""
	}
	return s
}

func requireContainer(raw document.Value, key string, kind document.Kind, p path) (document.Value, error) {
	value, ok := raw.Lookup(key)
	if !ok || value.IsNull() {
		return document.Value{}, missingField(p.key(key), "missing required field %q", key)
	}
	if value.Kind() != kind {
		return document.Value{}, missingField(p.key(key), "field %q must be a %s, got %s", key, kind, value.Kind())
	}
	return value, nil
}

func requireString(raw document.Value, key string, p path) (string, error) {
	value, ok := raw.Lookup(key)
	if !ok || value.IsNull() {
		return "", missingField(p.key(key), "missing required field %q", key)
	}
	s, ok := value.AsString()
	if !ok {
		return "", invalidShape(p.key(key), "field %q must be a string, got %s", key, value.Kind())
	}
	if s == "" {
		return "", invalidShape(p.key(key), "field %q must not be empty", key)
	}
	return s, nil
}

// optionalString returns "" for absent or null keys.
func optionalString(raw document.Value, key string, p path) (string, error) {
	value, ok := raw.Lookup(key)
	if !ok || value.IsNull() {
		return "", nil
	}
	s, ok := value.AsString()
	if !ok {
		return "", invalidShape(p.key(key), "field %q must be a string, got %s", key, value.Kind())
	}
	return s, nil
}

type path string

func (p path) key(k string) path {
	if p == "" {
		return path(k)
	}
	return p + "." + path(k)
}

func (p path) index(i int) path {
	return p + "[" + path(strconv.Itoa(i)) + "]"
}
