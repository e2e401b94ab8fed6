package cart

import (
	"slices"

	"github.com/shopease/storefront/internal/models"
	"github.com/shopspring/decimal"
)

type ActionType string

const (
	ActionAddItem        ActionType = "ADD_ITEM"
	ActionRemoveItem     ActionType = "REMOVE_ITEM"
	ActionUpdateQuantity ActionType = "UPDATE_QUANTITY"
	ActionClearCart      ActionType = "CLEAR_CART"
	ActionSetCart        ActionType = "SET_CART"
)

// Action is one cart transition. Only the fields relevant to Type are read.
type Action struct {
	Type      ActionType
	Item      models.CartLineItem
	ProductID int64
	Quantity  int
	Items     []models.CartLineItem
}

func AddItem(item models.CartLineItem, quantity int) Action {
	return Action{Type: ActionAddItem, Item: item, Quantity: quantity}
}

func RemoveItem(productID int64) Action {
	return Action{Type: ActionRemoveItem, ProductID: productID}
}

// UpdateQuantity sets the quantity as given. Callers floor it at 1.
func UpdateQuantity(productID int64, quantity int) Action {
	return Action{Type: ActionUpdateQuantity, ProductID: productID, Quantity: quantity}
}

func ClearCart() Action {
	return Action{Type: ActionClearCart}
}

// SetCart replaces the whole item list. No merge with local changes.
func SetCart(items []models.CartLineItem) Action {
	return Action{Type: ActionSetCart, Items: items}
}

// State is the cart as seen by the view layer. TotalItems and TotalPrice are
// derived from Items on every transition and never set independently.
type State struct {
	Items      []models.CartLineItem `json:"items"`
	TotalItems int                   `json:"totalItems"`
	TotalPrice decimal.Decimal       `json:"totalPrice"`
}

func InitialState() State {
	return State{Items: []models.CartLineItem{}, TotalPrice: decimal.Zero}
}

// NewState builds a state from items, computing the totals.
func NewState(items []models.CartLineItem) State {
	return withTotals(slices.Clone(items))
}

// Reduce applies action to state and returns the next state. The input state is
// never modified.
func Reduce(state State, action Action) State {
	items := slices.Clone(state.Items)

	switch action.Type {
	case ActionAddItem:
		idx := indexOf(items, action.Item.ProductID)
		if idx >= 0 {
			items[idx].Quantity += action.Quantity
		} else {
			item := action.Item
			item.Quantity = action.Quantity
			items = append(items, item)
		}

	case ActionRemoveItem:
		idx := indexOf(items, action.ProductID)
		if idx < 0 {
			return state
		}
		items = slices.Delete(items, idx, idx+1)

	case ActionUpdateQuantity:
		idx := indexOf(items, action.ProductID)
		if idx < 0 {
			return state
		}
		items[idx].Quantity = action.Quantity

	case ActionClearCart:
		items = nil

	case ActionSetCart:
		items = slices.Clone(action.Items)

	default:
		return state
	}

	return withTotals(items)
}

func withTotals(items []models.CartLineItem) State {
	if items == nil {
		items = []models.CartLineItem{}
	}

	total := decimal.Zero
	count := 0

	for _, item := range items {
		count += item.Quantity
		total = total.Add(item.LineTotal())
	}

	return State{Items: items, TotalItems: count, TotalPrice: total}
}

func indexOf(items []models.CartLineItem, productID int64) int {
	return slices.IndexFunc(items, func(i models.CartLineItem) bool {
		return i.ProductID == productID
	})
}
