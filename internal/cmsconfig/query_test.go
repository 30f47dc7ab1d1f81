package cmsconfig

import (
	"errors"
	"math"
	"testing"
)

func TestListQuery(t *testing.T) {
	t.Parallel()

	rc := RecordConfig{
		RecordName: "blog_post",
		RecordType: "post",
		List:       ListPageConfig{Label: "Posts", PerPage: 10},
	}

	tests := []struct {
		name       string
		page       int
		wantOffset int
		wantErr    error
	}{
		{name: "FirstPage", page: 1, wantOffset: 0},
		{name: "ThirdPage", page: 3, wantOffset: 20},
		{name: "ZeroPage", page: 0, wantErr: ErrInvalidPage},
		{name: "NegativePage", page: -2, wantErr: ErrInvalidPage},
		{name: "OffsetOverflow", page: 400000000000000000, wantErr: ErrInvalidPage},
		{name: "MaxInt", page: math.MaxInt, wantErr: ErrInvalidPage},
		{name: "LastRepresentablePage", page: math.MaxInt/10 + 1, wantOffset: math.MaxInt / 10 * 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			q, err := rc.ListQuery(tc.page)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ListQuery returned error: %v", err)
			}
			if q.Limit != 10 || q.PerPage != 10 || q.Offset != tc.wantOffset {
				t.Fatalf("unexpected window: %+v", q)
			}
			if q.RecordName != "blog_post" || q.RecordType != "post" || q.Page != tc.page {
				t.Fatalf("unexpected identity: %+v", q)
			}
		})
	}
}

func TestListQueryFallsBackToDefaultPerPage(t *testing.T) {
	t.Parallel()

	q, err := RecordConfig{RecordName: "user", RecordType: "user"}.ListQuery(2)
	if err != nil {
		t.Fatalf("ListQuery returned error: %v", err)
	}
	if q.Limit != DefaultPerPage || q.Offset != DefaultPerPage {
		t.Fatalf("unexpected window: %+v", q)
	}
}
