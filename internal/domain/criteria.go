package domain

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultPageSize is used when Criteria.Size is left at zero.
const DefaultPageSize = 10

// SortField names an Expense field the query engine can order by.
type SortField string

const (
	SortByDate           SortField = "date"
	SortByAmount         SortField = "amount"
	SortByDescription    SortField = "description"
	SortByCategory       SortField = "categoryId"
	SortByID             SortField = "id"
	SortByCreatedAt      SortField = "createdAt"
	SortByLastModifiedAt SortField = "lastModifiedAt"
	SortByName           SortField = "name" // categories only
)

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortSpec is a parsed "field,direction" pair. The zero value means
// "no explicit order": results keep their source order.
type SortSpec struct {
	Field     SortField
	Direction SortDirection
}

// ParseSort parses "field,direction". The direction defaults to asc when
// omitted or unrecognized. Unknown fields are kept so they can be sent to a
// remote backend; the local engine ignores them.
func ParseSort(s string) SortSpec {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortSpec{}
	}
	field, dir, _ := strings.Cut(s, ",")
	spec := SortSpec{Field: SortField(strings.TrimSpace(field)), Direction: SortAsc}
	if strings.EqualFold(strings.TrimSpace(dir), string(SortDesc)) {
		spec.Direction = SortDesc
	}
	return spec
}

// IsZero reports whether no sort was requested.
func (s SortSpec) IsZero() bool {
	return s.Field == ""
}

// Descending reports whether the spec orders from high to low.
func (s SortSpec) Descending() bool {
	return s.Direction == SortDesc
}

// String returns the spec as "field,direction" (e.g. "date,desc").
func (s SortSpec) String() string {
	if s.IsZero() {
		return ""
	}
	dir := s.Direction
	if dir != SortDesc {
		dir = SortAsc
	}
	return string(s.Field) + "," + string(dir)
}

// Criteria governs one page query. Every optional field has a documented
// zero value: empty CategoryID and nil dates disable the filter, a zero
// SortSpec keeps source order and Size 0 selects DefaultPageSize.
type Criteria struct {
	Page       int
	Size       int
	Sort       SortSpec
	CategoryID string
	StartDate  *time.Time
	EndDate    *time.Time
}

// Validate rejects negative page indexes and sizes.
func (c Criteria) Validate() error {
	if c.Page < 0 {
		return &ErrValidation{Field: "page", Message: "must not be negative"}
	}
	if c.Size < 0 {
		return &ErrValidation{Field: "size", Message: "must not be negative"}
	}
	return nil
}

// EffectiveSize returns Size, or DefaultPageSize when Size is zero.
func (c Criteria) EffectiveSize() int {
	if c.Size <= 0 {
		return DefaultPageSize
	}
	return c.Size
}

// WithWindow returns a copy of c restricted to the inclusive [start, end] range.
func (c Criteria) WithWindow(start, end time.Time) Criteria {
	c.StartDate = &start
	c.EndDate = &end
	return c
}

// Values serializes the criteria as a flat query-string parameter set.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(c.Page))
	v.Set("size", strconv.Itoa(c.EffectiveSize()))
	if !c.Sort.IsZero() {
		v.Set("sort", c.Sort.String())
	}
	if c.CategoryID != "" {
		v.Set("categoryId", c.CategoryID)
	}
	if c.StartDate != nil {
		v.Set("startDate", c.StartDate.Format(time.RFC3339))
	}
	if c.EndDate != nil {
		v.Set("endDate", c.EndDate.Format(time.RFC3339))
	}
	return v
}

// CriteriaFromValues is the inverse of Values. Missing fields take their
// defaults; malformed numbers and dates are validation errors.
func CriteriaFromValues(v url.Values) (Criteria, error) {
	var c Criteria
	if s := strings.TrimSpace(v.Get("page")); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil {
			return c, &ErrValidation{Field: "page", Message: "must be an integer"}
		}
		c.Page = p
	}
	if s := strings.TrimSpace(v.Get("size")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return c, &ErrValidation{Field: "size", Message: "must be an integer"}
		}
		c.Size = n
	}
	c.Sort = ParseSort(v.Get("sort"))
	c.CategoryID = strings.TrimSpace(v.Get("categoryId"))

	for _, f := range []struct {
		name string
		dst  **time.Time
	}{{"startDate", &c.StartDate}, {"endDate", &c.EndDate}} {
		s := strings.TrimSpace(v.Get(f.name))
		if s == "" {
			continue
		}
		t, err := ParseDate(s)
		if err != nil {
			return c, &ErrValidation{Field: f.name, Message: "must be YYYY-MM-DD or RFC 3339"}
		}
		*f.dst = &t
	}
	return c, c.Validate()
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
