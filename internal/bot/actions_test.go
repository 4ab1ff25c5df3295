package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionSimpleTokens(t *testing.T) {
	tests := []struct {
		token string
		kind  Kind
	}{
		{"menu", KindMainMenu},
		{"help", KindHelp},
		{"cart", KindShowCart},
		{"cart:clear", KindClearCart},
		{"refresh", KindRefresh},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			a, err := ParseAction(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, a.Kind)
		})
	}
}

func TestParseActionViewTokens(t *testing.T) {
	a, err := ParseAction("products:price:desc:3")
	require.NoError(t, err)
	assert.Equal(t, KindBrowse, a.Kind)
	assert.Equal(t, SortPrice, a.View.Sort)
	assert.False(t, a.View.Ascending)
	assert.Equal(t, 3, a.Page)

	a, err = ParseAction("product:name:asc:17")
	require.NoError(t, err)
	assert.Equal(t, KindDetail, a.Kind)
	assert.Equal(t, SortName, a.View.Sort)
	assert.True(t, a.View.Ascending)
	assert.Equal(t, 17, a.Index)

	a, err = ParseAction("add:none:asc:0")
	require.NoError(t, err)
	assert.Equal(t, KindAddToCart, a.Kind)
	assert.Equal(t, SortNone, a.View.Sort)
	assert.Equal(t, 0, a.Index)
}

func TestParseActionSortTokens(t *testing.T) {
	a, err := ParseAction("sortmenu:name")
	require.NoError(t, err)
	assert.Equal(t, KindSortMenu, a.Kind)
	assert.Equal(t, SortName, a.View.Sort)

	a, err = ParseAction("sort:price:asc")
	require.NoError(t, err)
	assert.Equal(t, KindApplySort, a.Kind)
	assert.Equal(t, SortPrice, a.View.Sort)
	assert.True(t, a.View.Ascending)
}

func TestParseActionMalformed(t *testing.T) {
	bad := []string{
		"",
		"unknown",
		"products",
		"products:name:asc",
		"products:name:asc:x",
		"products:name:asc:-1",
		"products:loud:asc:0",
		"products:name:sideways:0",
		"product:name:asc:1:extra",
		"sort:none:asc",
		"sortmenu:none",
		"sortmenu:price:extra",
		"add:name:0",
	}

	for _, token := range bad {
		t.Run(token, func(t *testing.T) {
			_, err := ParseAction(token)
			assert.ErrorIs(t, err, ErrBadToken)
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	actions := []Action{
		{Kind: KindMainMenu},
		{Kind: KindHelp},
		{Kind: KindShowCart},
		{Kind: KindClearCart},
		{Kind: KindRefresh},
		{Kind: KindSortMenu, View: View{Sort: SortName}},
		{Kind: KindSortMenu, View: View{Sort: SortPrice}},
		{Kind: KindApplySort, View: View{Sort: SortName, Ascending: true}},
		{Kind: KindApplySort, View: View{Sort: SortPrice, Ascending: false}},
		{Kind: KindBrowse, View: View{Sort: SortNone, Ascending: true}, Page: 0},
		{Kind: KindBrowse, View: View{Sort: SortPrice, Ascending: true}, Page: 7},
		{Kind: KindDetail, View: View{Sort: SortName, Ascending: false}, Index: 12},
		{Kind: KindAddToCart, View: View{Sort: SortNone, Ascending: true}, Index: 3},
	}

	for _, want := range actions {
		t.Run(want.Token(), func(t *testing.T) {
			got, err := ParseAction(want.Token())
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}
