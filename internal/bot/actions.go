// Package bot decodes user action tokens into a closed Action set and routes
// every action to the catalog, cart and refresh components. Token parsing
// happens once at the transport boundary; the router itself is stateless —
// each button payload carries the sort key, direction and page or index needed
// to reproduce the view it was rendered from.
package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadToken = errors.New("malformed action token")

type Kind int

const (
	KindMainMenu Kind = iota
	KindHelp
	KindShowCart
	KindClearCart
	KindRefresh
	KindSortMenu
	KindApplySort
	KindBrowse
	KindDetail
	KindAddToCart
)

type SortKey int

const (
	SortNone SortKey = iota
	SortName
	SortPrice
)

// View is the ordering a button was rendered from.
type View struct {
	Sort      SortKey
	Ascending bool
}

// Action is one decoded user action. Page is set for KindBrowse, Index for
// KindDetail/KindAddToCart; View for everything that depends on an ordering.
type Action struct {
	Kind  Kind
	View  View
	Page  int
	Index int
}

// Token grammar (colon-delimited ASCII, stable):
//
//	menu | help | cart | cart:clear | refresh
//	sortmenu:name | sortmenu:price
//	sort:<name|price>:<asc|desc>
//	products:<none|name|price>:<asc|desc>:<page>
//	product:<none|name|price>:<asc|desc>:<index>
//	add:<none|name|price>:<asc|desc>:<index>

// ParseAction decodes a callback token. Unknown or malformed tokens return
// ErrBadToken; the router turns those into a harmless reply.
func ParseAction(token string) (Action, error) {
	switch token {
	case "menu":
		return Action{Kind: KindMainMenu}, nil
	case "help":
		return Action{Kind: KindHelp}, nil
	case "cart":
		return Action{Kind: KindShowCart}, nil
	case "cart:clear":
		return Action{Kind: KindClearCart}, nil
	case "refresh":
		return Action{Kind: KindRefresh}, nil
	}

	parts := strings.Split(token, ":")
	switch parts[0] {
	case "sortmenu":
		if len(parts) != 2 {
			return Action{}, ErrBadToken
		}
		key, err := parseSortKey(parts[1])
		if err != nil || key == SortNone {
			return Action{}, ErrBadToken
		}
		return Action{Kind: KindSortMenu, View: View{Sort: key}}, nil

	case "sort":
		if len(parts) != 3 {
			return Action{}, ErrBadToken
		}
		view, err := parseView(parts[1], parts[2])
		if err != nil || view.Sort == SortNone {
			return Action{}, ErrBadToken
		}
		return Action{Kind: KindApplySort, View: view}, nil

	case "products":
		view, n, err := parseViewAndNumber(parts)
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: KindBrowse, View: view, Page: n}, nil

	case "product":
		view, n, err := parseViewAndNumber(parts)
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: KindDetail, View: view, Index: n}, nil

	case "add":
		view, n, err := parseViewAndNumber(parts)
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: KindAddToCart, View: view, Index: n}, nil
	}

	return Action{}, ErrBadToken
}

// Token renders the action back into its wire form. ParseAction(a.Token())
// round-trips for every well-formed action.
func (a Action) Token() string {
	switch a.Kind {
	case KindMainMenu:
		return "menu"
	case KindHelp:
		return "help"
	case KindShowCart:
		return "cart"
	case KindClearCart:
		return "cart:clear"
	case KindRefresh:
		return "refresh"
	case KindSortMenu:
		return "sortmenu:" + sortKeyString(a.View.Sort)
	case KindApplySort:
		return fmt.Sprintf("sort:%s:%s", sortKeyString(a.View.Sort), dirString(a.View.Ascending))
	case KindBrowse:
		return fmt.Sprintf("products:%s:%s:%d", sortKeyString(a.View.Sort), dirString(a.View.Ascending), a.Page)
	case KindDetail:
		return fmt.Sprintf("product:%s:%s:%d", sortKeyString(a.View.Sort), dirString(a.View.Ascending), a.Index)
	case KindAddToCart:
		return fmt.Sprintf("add:%s:%s:%d", sortKeyString(a.View.Sort), dirString(a.View.Ascending), a.Index)
	}
	return ""
}

func parseViewAndNumber(parts []string) (View, int, error) {
	if len(parts) != 4 {
		return View{}, 0, ErrBadToken
	}
	view, err := parseView(parts[1], parts[2])
	if err != nil {
		return View{}, 0, ErrBadToken
	}
	n, err := strconv.Atoi(parts[3])
	if err != nil || n < 0 {
		return View{}, 0, ErrBadToken
	}
	return view, n, nil
}

func parseView(sortPart, dirPart string) (View, error) {
	key, err := parseSortKey(sortPart)
	if err != nil {
		return View{}, err
	}
	switch dirPart {
	case "asc":
		return View{Sort: key, Ascending: true}, nil
	case "desc":
		return View{Sort: key, Ascending: false}, nil
	}
	return View{}, ErrBadToken
}

func parseSortKey(s string) (SortKey, error) {
	switch s {
	case "none":
		return SortNone, nil
	case "name":
		return SortName, nil
	case "price":
		return SortPrice, nil
	}
	return SortNone, ErrBadToken
}

func sortKeyString(k SortKey) string {
	switch k {
	case SortName:
		return "name"
	case SortPrice:
		return "price"
	}
	return "none"
}

func dirString(asc bool) string {
	if asc {
		return "asc"
	}
	return "desc"
}
