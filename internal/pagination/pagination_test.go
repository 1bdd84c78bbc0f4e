package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var itemSpec = Spec{
	Filters: map[string]Filter{
		"kind":  {Column: "kind", Choices: []string{"A", "B"}},
		"owner": {Column: "owner_id", Numeric: true},
	},
	SearchFields: []string{"name", "description"},
	Ordering:     map[string]string{"name": "name", "score": "score"},
	DefaultOrder: "name",
}

type item struct {
	ID          uint
	Name        string
	Description string
	Kind        string
	OwnerID     uint
	Score       int
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&item{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func TestParseDefaults(t *testing.T) {
	req, err := Parse(url.Values{}, itemSpec)
	require.NoError(t, err)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, DefaultPageSize, req.PageSize)
	assert.Equal(t, "name", req.order)
}

func TestParsePageSize(t *testing.T) {
	req, err := Parse(url.Values{"page_size": {"1000"}}, itemSpec)
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, req.PageSize)

	req, err = Parse(url.Values{"page_size": {"abc"}}, itemSpec)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, req.PageSize)

	req, err = Parse(url.Values{"page_size": {"25"}}, itemSpec)
	require.NoError(t, err)
	assert.Equal(t, 25, req.PageSize)
}

func TestParseInvalidPage(t *testing.T) {
	for _, raw := range []string{"0", "-1", "two"} {
		_, err := Parse(url.Values{"page": {raw}}, itemSpec)
		assert.ErrorIs(t, err, ErrInvalidPage, raw)
	}
}

func TestParseOrdering(t *testing.T) {
	req, err := Parse(url.Values{"ordering": {"-score,bogus,name"}}, itemSpec)
	require.NoError(t, err)
	assert.Equal(t, "score DESC, name", req.order)

	req, err = Parse(url.Values{"ordering": {"password"}}, itemSpec)
	require.NoError(t, err)
	assert.Equal(t, "name", req.order)
}

func TestParseFilterValidation(t *testing.T) {
	_, err := Parse(url.Values{"kind": {"Z"}}, itemSpec)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "kind", fe.Field)

	_, err = Parse(url.Values{"owner": {"x"}}, itemSpec)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "owner", fe.Field)
}

func TestScopeAndResolve(t *testing.T) {
	db := setupDB(t)
	rows := []item{
		{Name: "Delta", Kind: "A", OwnerID: 1, Score: 4},
		{Name: "alpha", Kind: "B", OwnerID: 1, Score: 1, Description: "first"},
		{Name: "Charlie", Kind: "A", OwnerID: 2, Score: 3},
		{Name: "Bravo", Kind: "A", OwnerID: 2, Score: 2, Description: "ALPHA team"},
	}
	require.NoError(t, db.Create(&rows).Error)

	req, err := Parse(url.Values{"kind": {"A"}, "ordering": {"-score"}}, itemSpec)
	require.NoError(t, err)
	var got []item
	require.NoError(t, req.Scope(db.Model(&item{})).Find(&got).Error)
	require.Len(t, got, 3)
	assert.Equal(t, "Delta", got[0].Name)

	req, err = Parse(url.Values{"search": {"Alpha"}}, itemSpec)
	require.NoError(t, err)
	got = nil
	require.NoError(t, req.Scope(db.Model(&item{})).Find(&got).Error)
	assert.Len(t, got, 2)

	req, err = Parse(url.Values{"owner": {"2"}, "page_size": {"1"}, "page": {"2"}}, itemSpec)
	require.NoError(t, err)
	var count int64
	require.NoError(t, req.Filter(db.Model(&item{})).Count(&count).Error)
	assert.EqualValues(t, 2, count)
	require.NoError(t, req.Resolve(count))
	got = nil
	require.NoError(t, req.Scope(db.Model(&item{})).Offset(req.Offset()).Limit(req.Limit()).Find(&got).Error)
	require.Len(t, got, 1)
	assert.Equal(t, "Charlie", got[0].Name)

	req.Page = 3
	assert.ErrorIs(t, req.Resolve(count), ErrInvalidPage)
}

func TestSearchMatchesWildcardsLiterally(t *testing.T) {
	db := setupDB(t)
	rows := []item{
		{Name: "Alpha", Kind: "A", OwnerID: 1},
		{Name: "100% natural", Kind: "A", OwnerID: 1},
		{Name: "snake_case", Kind: "A", OwnerID: 1},
		{Name: `back\slash`, Kind: "A", OwnerID: 1},
	}
	require.NoError(t, db.Create(&rows).Error)

	cases := map[string][]string{
		"%":  {"100% natural"},
		"_":  {"snake_case"},
		`\`: {`back\slash`},
		"a_": {},
	}
	for term, want := range cases {
		req, err := Parse(url.Values{"search": {term}}, itemSpec)
		require.NoError(t, err)
		var got []item
		require.NoError(t, req.Scope(db.Model(&item{})).Find(&got).Error)
		names := make([]string, 0, len(got))
		for _, it := range got {
			names = append(names, it.Name)
		}
		assert.ElementsMatch(t, want, names, "search %q", term)
	}
}

func TestResolveEmptyFirstPage(t *testing.T) {
	req, err := Parse(url.Values{}, itemSpec)
	require.NoError(t, err)
	assert.NoError(t, req.Resolve(0))

	req, err = Parse(url.Values{"page": {"last"}}, itemSpec)
	require.NoError(t, err)
	require.NoError(t, req.Resolve(25))
	assert.Equal(t, 3, req.Page)
}

func TestNewPageLinks(t *testing.T) {
	base, err := url.Parse("http://example.com/api/v1/items/?page=2&search=x")
	require.NoError(t, err)

	req := Request{Page: 2, PageSize: 10}
	p := NewPage([]int{1, 2}, 25, req, base)
	require.NotNil(t, p.Next)
	require.NotNil(t, p.Previous)
	assert.Equal(t, "http://example.com/api/v1/items/?page=3&search=x", *p.Next)
	assert.Equal(t, "http://example.com/api/v1/items/?search=x", *p.Previous)

	p = NewPage[int](nil, 0, Request{Page: 1, PageSize: 10}, base)
	assert.Nil(t, p.Next)
	assert.Nil(t, p.Previous)
	assert.NotNil(t, p.Results)
	assert.Empty(t, p.Results)
}
