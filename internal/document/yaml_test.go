package document

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var allowValue = cmp.AllowUnexported(Value{})

func TestFromYAMLScalars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{name: "Empty", input: "", want: Null()},
		{name: "ExplicitNull", input: "~", want: Null()},
		{name: "Bool", input: "true", want: Bool(true)},
		{name: "Int", input: "25", want: Int(25)},
		{name: "NegativeInt", input: "-3", want: Int(-3)},
		{name: "Float", input: "2.5", want: Float(2.5)},
		{name: "PlainString", input: "user_name", want: String("user_name")},
		{name: "QuotedNumber", input: `"25"`, want: String("25")},
		{name: "Timestamp", input: "2024-11-01", want: String("2024-11-01")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := FromYAML([]byte(tc.input))
			if err != nil {
				t.Fatalf("FromYAML returned error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got, allowValue); diff != "" {
				t.Fatalf("unexpected value (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromYAMLKeepsMappingOrder(t *testing.T) {
	t.Parallel()

	got, err := FromYAML([]byte("zeta: 1\nalpha: [a, b]\nmid: {x: null}\n"))
	if err != nil {
		t.Fatalf("FromYAML returned error: %v", err)
	}

	want := Mapping(
		Entry{Key: "zeta", Value: Int(1)},
		Entry{Key: "alpha", Value: Sequence(String("a"), String("b"))},
		Entry{Key: "mid", Value: Mapping(Entry{Key: "x", Value: Null()})},
	)
	if diff := cmp.Diff(want, got, allowValue); diff != "" {
		t.Fatalf("unexpected value (-want +got):\n%s", diff)
	}
}

func TestFromYAMLAcceptsJSON(t *testing.T) {
	t.Parallel()

	got, err := FromYAML([]byte(`{"site": [], "records": {"user": {"list": {"perPage": 10}}}}`))
	if err != nil {
		t.Fatalf("FromYAML returned error: %v", err)
	}

	records, ok := got.Lookup("records")
	if !ok || records.Kind() != KindMapping {
		t.Fatalf("expected records mapping, got %v", records.Kind())
	}
	user, _ := records.Lookup("user")
	list, _ := user.Lookup("list")
	perPage, _ := list.Lookup("perPage")
	if n, ok := perPage.AsInt(); !ok || n != 10 {
		t.Fatalf("expected perPage 10, got %s", perPage)
	}
}

func TestFromYAMLResolvesAliasesAndMerges(t *testing.T) {
	t.Parallel()

	input := `
base: &base
  type: String
  label: Shared
fields:
  - *base
  - <<: *base
    name: email
    label: Email
`
	got, err := FromYAML([]byte(input))
	if err != nil {
		t.Fatalf("FromYAML returned error: %v", err)
	}

	fields, _ := got.Lookup("fields")
	items := fields.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(items))
	}

	wantAlias := Mapping(
		Entry{Key: "type", Value: String("String")},
		Entry{Key: "label", Value: String("Shared")},
	)
	if diff := cmp.Diff(wantAlias, items[0], allowValue); diff != "" {
		t.Fatalf("unexpected alias value (-want +got):\n%s", diff)
	}

	wantMerged := Mapping(
		Entry{Key: "name", Value: String("email")},
		Entry{Key: "label", Value: String("Email")},
		Entry{Key: "type", Value: String("String")},
	)
	if diff := cmp.Diff(wantMerged, items[1], allowValue); diff != "" {
		t.Fatalf("unexpected merged value (-want +got):\n%s", diff)
	}
}

func TestFromYAMLRejectsAliasFanOut(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for level := 1; level <= 9; level++ {
		fmt.Fprintf(&b, "l%d: &l%d [", level, level)
		for i := 0; i < 10; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "*l%d", level-1)
		}
		b.WriteString("]\n")
	}

	start := time.Now()
	_, err := FromYAML([]byte(b.String()))
	if !errors.Is(err, ErrExcessiveAliasing) {
		t.Fatalf("expected ErrExcessiveAliasing, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("expected fan-out to be rejected quickly, took %s", elapsed)
	}
}

func TestFromYAMLAllowsModestAliasReuse(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("base: &base {type: String, label: Shared}\nfields:\n")
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "  - {<<: *base, name: f%d}\n", i)
	}

	got, err := FromYAML([]byte(b.String()))
	if err != nil {
		t.Fatalf("FromYAML returned error: %v", err)
	}
	fields, _ := got.Lookup("fields")
	if fields.Len() != 200 {
		t.Fatalf("expected 200 fields, got %d", fields.Len())
	}
}

func TestFromYAMLRejectsDuplicateKeys(t *testing.T) {
	t.Parallel()

	_, err := FromYAML([]byte("records:\n  user: {}\n  user: {}\n"))
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestFromYAMLRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	if _, err := FromYAML([]byte("site: [unterminated")); err == nil {
		t.Fatalf("expected syntax error")
	}
	if _, err := FromYAML([]byte("n: 99999999999999999999999")); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestValueAccessors(t *testing.T) {
	t.Parallel()

	seq := Sequence(String("a"))
	items := seq.Items()
	items[0] = String("mutated")
	if s, _ := seq.Items()[0].AsString(); s != "a" {
		t.Fatalf("expected Items to return a copy, got %q", s)
	}

	if _, ok := String("x").Lookup("x"); ok {
		t.Fatalf("expected Lookup on a scalar to fail")
	}
	if Null().String() != "null" || Int(7).String() != "7" || Bool(false).String() != "false" {
		t.Fatalf("unexpected scalar rendering")
	}
	if Mapping().String() != "mapping" || Sequence().Len() != 0 {
		t.Fatalf("unexpected container rendering")
	}
	if KindFloat.String() != "float" {
		t.Fatalf("unexpected kind name %s", KindFloat)
	}
}
