package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Impluse2/flowersss/internal/catalog"
	"github.com/Impluse2/flowersss/internal/domain"
	"github.com/Impluse2/flowersss/internal/price"
	"github.com/Impluse2/flowersss/internal/refresh"
)

// Catalog is the read side of the catalog store.
type Catalog interface {
	Current() domain.Snapshot
}

// Carts is what the router needs from the cart service.
type Carts interface {
	EnsureUser(ctx context.Context, userID int64, username string) error
	AddItem(ctx context.Context, userID int64, item domain.CartItem) error
	Lines(ctx context.Context, userID int64) ([]domain.CartLine, error)
	Clear(ctx context.Context, userID int64) error
}

// Refresher triggers the external catalog refresh.
type Refresher interface {
	Run(ctx context.Context) error
}

// Button is one inline key: either a callback Token or an outbound URL.
type Button struct {
	Label string
	Token string
	URL   string
}

// Reply is the transport-agnostic response payload for one user action.
type Reply struct {
	Text     string
	ImageURL string
	Markdown bool
	Keyboard [][]Button
}

// Request is one incoming user action.
type Request struct {
	UserID   int64
	Username string
	Token    string
}

type Router struct {
	catalog   Catalog
	carts     Carts
	refresher Refresher
	siteURL   string
	pageSize  int
}

func NewRouter(cat Catalog, carts Carts, refresher Refresher, siteURL string, pageSize int) *Router {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Router{
		catalog:   cat,
		carts:     carts,
		refresher: refresher,
		siteURL:   siteURL,
		pageSize:  pageSize,
	}
}

// HandleStart serves the /start command: register the user, show the menu.
func (r *Router) HandleStart(ctx context.Context, req Request) Reply {
	if err := r.carts.EnsureUser(ctx, req.UserID, req.Username); err != nil {
		log.Printf("ensure user %d failed: %v", req.UserID, err)
	}
	return r.mainMenu("Добро пожаловать! Выберите действие:")
}

// Handle serves one button press. It never returns an error: every failure
// becomes a plain-text reply with navigation buttons.
func (r *Router) Handle(ctx context.Context, req Request) Reply {
	action, err := ParseAction(req.Token)
	if err != nil {
		log.Printf("bad action token %q from user %d", req.Token, req.UserID)
		return r.mainMenu("Неизвестное действие. Выберите действие:")
	}

	switch action.Kind {
	case KindMainMenu:
		return r.mainMenu("Вы вернулись в главное меню. Выберите действие:")
	case KindHelp:
		return r.help()
	case KindShowCart:
		return r.showCart(ctx, req.UserID)
	case KindClearCart:
		return r.clearCart(ctx, req.UserID)
	case KindRefresh:
		return r.runRefresh(ctx)
	case KindSortMenu:
		return r.sortMenu(action.View.Sort)
	case KindApplySort:
		return r.browse(Action{Kind: KindBrowse, View: action.View})
	case KindBrowse:
		return r.browse(action)
	case KindDetail:
		return r.productDetail(action)
	case KindAddToCart:
		return r.addToCart(ctx, req.UserID, action)
	}

	return r.mainMenu("Неизвестное действие. Выберите действие:")
}

func (r *Router) mainMenu(text string) Reply {
	keyboard := [][]Button{
		{{Label: "Посмотреть товары", Token: Action{Kind: KindBrowse}.Token()}},
		{{Label: "Сортировать по алфавиту", Token: Action{Kind: KindSortMenu, View: View{Sort: SortName}}.Token()}},
		{{Label: "Сортировать по цене", Token: Action{Kind: KindSortMenu, View: View{Sort: SortPrice}}.Token()}},
		{{Label: "Показать корзину", Token: Action{Kind: KindShowCart}.Token()}},
		{{Label: "Получить помощь", Token: Action{Kind: KindHelp}.Token()}},
		{{Label: "Обновить список товаров", Token: Action{Kind: KindRefresh}.Token()}},
	}
	if r.siteURL != "" {
		keyboard = append(keyboard, []Button{{Label: "Перейти на главную страницу", URL: r.siteURL}})
	}
	return Reply{Text: text, Keyboard: keyboard}
}

func (r *Router) help() Reply {
	text := "Вот доступные действия, которые вы можете выполнить:\n" +
		"- 'Посмотреть товары' — список товаров с пагинацией.\n" +
		"- 'Сортировать по алфавиту' — товары в алфавитном порядке.\n" +
		"- 'Сортировать по цене' — товары по возрастанию или убыванию цены.\n" +
		"- 'Показать корзину' — содержимое корзины и итоговая сумма.\n" +
		"- 'Обновить список товаров' — перезагрузка каталога с сайта.\n" +
		"- 'Перейти на главную страницу' — открыть сайт магазина."
	return Reply{Text: text, Keyboard: [][]Button{backRow()}}
}

// viewSnapshot materializes the ordering a button was rendered from. The sort
// is recomputed per action: derived views are never persisted.
func (r *Router) viewSnapshot(v View) domain.Snapshot {
	snap := r.catalog.Current()
	switch v.Sort {
	case SortName:
		return catalog.SortByName(snap, v.Ascending)
	case SortPrice:
		return catalog.SortByPrice(snap, v.Ascending)
	}
	return snap
}

func (r *Router) browse(action Action) Reply {
	snap := r.viewSnapshot(action.View)
	if len(snap) == 0 {
		return Reply{
			Text:     "Список товаров пуст.",
			Keyboard: [][]Button{refreshRow(), backRow()},
		}
	}

	items, hasNext := catalog.Paginate(snap, action.Page, r.pageSize)
	if len(items) == 0 {
		// Stale page button: the catalog shrank since it was rendered.
		return r.browse(Action{Kind: KindBrowse, View: action.View})
	}

	keyboard := make([][]Button, 0, len(items)+2)
	base := action.Page * r.pageSize
	for i, p := range items {
		detail := Action{Kind: KindDetail, View: action.View, Index: base + i}
		keyboard = append(keyboard, []Button{{Label: p.Name, Token: detail.Token()}})
	}
	if hasNext {
		next := Action{Kind: KindBrowse, View: action.View, Page: action.Page + 1}
		keyboard = append(keyboard, []Button{{Label: "Показать ещё", Token: next.Token()}})
	}
	keyboard = append(keyboard, backRow())

	return Reply{Text: "Выберите товар:", Keyboard: keyboard}
}

func (r *Router) productDetail(action Action) Reply {
	snap := r.viewSnapshot(action.View)
	if action.Index >= len(snap) {
		return r.staleProduct()
	}
	p := snap[action.Index]

	text := fmt.Sprintf("*%s*\nЦена: %s\n[Ссылка на товар](%s)", escapeMarkdown(p.Name), p.Price, p.Link)
	keyboard := [][]Button{
		{{Label: "Добавить в корзину", Token: Action{Kind: KindAddToCart, View: action.View, Index: action.Index}.Token()}},
		{{Label: "Назад к товарам", Token: Action{Kind: KindBrowse, View: action.View, Page: action.Index / r.pageSize}.Token()}},
		{{Label: "Главное меню", Token: Action{Kind: KindMainMenu}.Token()}},
	}

	return Reply{Text: text, ImageURL: p.Image, Markdown: true, Keyboard: keyboard}
}

func (r *Router) addToCart(ctx context.Context, userID int64, action Action) Reply {
	snap := r.viewSnapshot(action.View)
	if action.Index >= len(snap) {
		return r.staleProduct()
	}
	p := snap[action.Index]

	err := r.carts.AddItem(ctx, userID, domain.CartItem{ProductID: p.ID, Quantity: 1})
	if err != nil {
		log.Printf("add to cart failed for user %d product %d: %v", userID, p.ID, err)
		return Reply{
			Text:     fmt.Sprintf("Произошла ошибка при добавлении товара '%s' в корзину.", p.Name),
			Keyboard: [][]Button{backRow()},
		}
	}

	keyboard := [][]Button{
		{{Label: "Показать корзину", Token: Action{Kind: KindShowCart}.Token()}},
		{{Label: "Назад к товарам", Token: Action{Kind: KindBrowse, View: action.View, Page: action.Index / r.pageSize}.Token()}},
		{{Label: "Главное меню", Token: Action{Kind: KindMainMenu}.Token()}},
	}
	return Reply{
		Text:     fmt.Sprintf("Товар '%s' был добавлен в вашу корзину!", p.Name),
		Keyboard: keyboard,
	}
}

func (r *Router) showCart(ctx context.Context, userID int64) Reply {
	lines, err := r.carts.Lines(ctx, userID)
	if err != nil {
		log.Printf("get cart failed for user %d: %v", userID, err)
		return Reply{
			Text:     "Не удалось получить корзину. Попробуйте ещё раз позже.",
			Keyboard: [][]Button{backRow()},
		}
	}

	if len(lines) == 0 {
		return Reply{Text: "Ваша корзина пуста.", Keyboard: [][]Button{backRow()}}
	}

	var b strings.Builder
	b.WriteString("*Ваша корзина:*\n\n")
	var total int64
	for _, l := range lines {
		lineTotal := price.Extract(l.Price) * int64(l.Quantity)
		total += lineTotal
		fmt.Fprintf(&b, "%s — %s x %d = %d ₽\n", l.Name, l.Price, l.Quantity, lineTotal)
	}
	fmt.Fprintf(&b, "\n*Итого: %d ₽*", total)

	keyboard := [][]Button{
		{{Label: "Очистить корзину", Token: Action{Kind: KindClearCart}.Token()}},
		{{Label: "Назад к товарам", Token: Action{Kind: KindBrowse}.Token()}},
		{{Label: "Главное меню", Token: Action{Kind: KindMainMenu}.Token()}},
	}
	return Reply{Text: b.String(), Markdown: true, Keyboard: keyboard}
}

func (r *Router) clearCart(ctx context.Context, userID int64) Reply {
	if err := r.carts.Clear(ctx, userID); err != nil {
		return Reply{
			Text:     "Произошла ошибка при очистке корзины.",
			Keyboard: [][]Button{backRow()},
		}
	}
	return Reply{
		Text:     "Ваша корзина была успешно очищена!",
		Keyboard: [][]Button{backRow()},
	}
}

func (r *Router) sortMenu(key SortKey) Reply {
	var rows [][]Button
	switch key {
	case SortPrice:
		rows = [][]Button{
			{{Label: "По цене (от низкой к высокой)", Token: Action{Kind: KindApplySort, View: View{Sort: SortPrice, Ascending: true}}.Token()}},
			{{Label: "По цене (от высокой к низкой)", Token: Action{Kind: KindApplySort, View: View{Sort: SortPrice, Ascending: false}}.Token()}},
		}
	default:
		rows = [][]Button{
			{{Label: "По алфавиту (А-Я)", Token: Action{Kind: KindApplySort, View: View{Sort: SortName, Ascending: true}}.Token()}},
			{{Label: "По алфавиту (Я-А)", Token: Action{Kind: KindApplySort, View: View{Sort: SortName, Ascending: false}}.Token()}},
		}
	}
	rows = append(rows, backRow())
	return Reply{Text: "Выберите порядок сортировки:", Keyboard: rows}
}

func (r *Router) runRefresh(ctx context.Context) Reply {
	err := r.refresher.Run(ctx)
	switch {
	case err == nil:
		return Reply{Text: "Данные успешно обновлены!", Keyboard: [][]Button{backRow()}}
	case errors.Is(err, refresh.ErrInFlight):
		return Reply{
			Text:     "Обновление уже выполняется. Пожалуйста, подождите.",
			Keyboard: [][]Button{backRow()},
		}
	default:
		log.Printf("refresh failed: %v", err)
		return Reply{
			Text:     "Произошла ошибка при обновлении данных. Пожалуйста, попробуйте снова позже.",
			Keyboard: [][]Button{backRow()},
		}
	}
}

func (r *Router) staleProduct() Reply {
	return Reply{
		Text:     "Этот товар больше не доступен. Список товаров мог обновиться.",
		Keyboard: [][]Button{backRow()},
	}
}

func backRow() []Button {
	return []Button{
		{Label: "Назад к товарам", Token: Action{Kind: KindBrowse}.Token()},
		{Label: "Главное меню", Token: Action{Kind: KindMainMenu}.Token()},
	}
}

func refreshRow() []Button {
	return []Button{{Label: "Обновить список товаров", Token: Action{Kind: KindRefresh}.Token()}}
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer("*", "\\*", "_", "\\_", "[", "\\[", "`", "\\`")
	return replacer.Replace(s)
}
