// Command kiosk is the customer-facing ordering client. The cart survives
// between invocations in a local file, mirroring how the counter tablet keeps
// its cart across page reloads.
//
// Usage:
//
//	kiosk menu                           show the drink catalog
//	kiosk add <itemId> [flags]           add a drink to the cart
//	kiosk cart                           show the cart
//	kiosk qty <lineId> <n>               change a line's quantity (0 removes)
//	kiosk remove <lineId>                remove a line
//	kiosk clear                          empty the cart
//	kiosk submit                         place the order
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/tdhoang/teahouse/internal/domain/cart"
	"github.com/tdhoang/teahouse/internal/domain/menu"
	"github.com/tdhoang/teahouse/internal/domain/order"
	"github.com/tdhoang/teahouse/internal/storage/localfile"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kiosk <menu|add|cart|qty|remove|clear|submit> [args]")
}

func run(ctx context.Context, cmd string, args []string) error {
	client := &apiClient{
		baseURL: envOr("TEA_API_URL", "http://localhost:8080"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}

	switch cmd {
	case "menu":
		return showMenu(ctx, client)
	case "add", "cart", "qty", "remove", "clear", "submit":
	default:
		usage()
		return errors.Errorf("unknown command %q", cmd)
	}

	store, err := openCart(ctx, client)
	if err != nil {
		return err
	}

	switch cmd {
	case "add":
		return addItem(store, args)
	case "cart":
		showCart(store)
		return nil
	case "qty":
		if len(args) != 2 {
			return errors.New("usage: kiosk qty <lineId> <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Wrap(err, "parse quantity")
		}
		if err := store.UpdateQuantity(args[0], n); err != nil {
			return err
		}
		showCart(store)
		return nil
	case "remove":
		if len(args) != 1 {
			return errors.New("usage: kiosk remove <lineId>")
		}
		if err := store.Remove(args[0]); err != nil {
			return err
		}
		showCart(store)
		return nil
	case "clear":
		return store.Clear()
	case "submit":
		return submit(ctx, client, store)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func cartPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "teahouse", "cart.json")
}

// openCart builds the cart store against the live catalog, falling back to
// the built-in menu when the API is unreachable.
func openCart(ctx context.Context, client *apiClient) (*cart.Store, error) {
	catalog, err := client.fetchMenu(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: API unreachable, using built-in menu")
		catalog = menu.Default()
	}
	return cart.NewStore(catalog, localfile.New(cartPath()))
}

func addItem(store *cart.Store, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	qty := fs.Int("qty", 1, "quantity")
	sugar := fs.Int("sugar", 50, "sugar percentage")
	ice := fs.Int("ice", 50, "ice percentage")
	aloe := fs.Bool("aloe", false, "add aloe vera topping")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: kiosk add <itemId> [--qty N] [--sugar N] [--ice N] [--aloe]")
	}

	custom := &order.Customization{Sugar: *sugar, Ice: *ice, Aloe: *aloe}
	line, err := store.Add(fs.Arg(0), *qty, custom)
	if err != nil {
		return err
	}

	fmt.Printf("added %s x%d = %s VND\n", line.Name, line.Quantity, line.Total)
	showCart(store)
	return nil
}

func showCart(store *cart.Store) {
	items := store.Items()
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return
	}
	for _, li := range items {
		desc := ""
		if li.Custom != nil {
			desc = fmt.Sprintf("  (sugar %d%%, ice %d%%", li.Custom.Sugar, li.Custom.Ice)
			if li.Custom.Aloe {
				desc += ", aloe"
			}
			desc += ")"
		}
		fmt.Printf("%s  %s x%d = %s VND%s\n", li.ID, li.Name, li.Quantity, li.Total, desc)
	}
	fmt.Printf("total: %s VND\n", store.Total())
}

func showMenu(ctx context.Context, client *apiClient) error {
	catalog, err := client.fetchMenu(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: API unreachable, using built-in menu")
		catalog = menu.Default()
	}
	for _, it := range catalog {
		note := ""
		if it.HasCustomization {
			note = "  (sugar/ice/topping)"
		}
		fmt.Printf("%-12s %s — %s VND%s\n", it.ID, it.Name, it.BasePrice, note)
	}
	return nil
}

// submit places the order and clears the cart only after the server accepts.
func submit(ctx context.Context, client *apiClient, store *cart.Store) error {
	items := store.Items()
	if len(items) == 0 {
		return errors.New("cart is empty")
	}

	placed, err := client.placeOrder(ctx, items)
	if err != nil {
		return errors.Wrap(err, "place order")
	}
	if err := store.Clear(); err != nil {
		return errors.Wrap(err, "clear cart")
	}

	fmt.Printf("order %s placed, total %d VND\n", placed.ID, placed.Total)
	return nil
}

// apiClient is a thin JSON client for the ordering API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

type menuItemResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	BasePrice        int64  `json:"basePrice"`
	HasCustomization bool   `json:"hasCustomization"`
}

func (c *apiClient) fetchMenu(ctx context.Context) ([]menu.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/menu", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("menu: unexpected status %d", resp.StatusCode)
	}

	var raw []menuItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode menu")
	}

	items := make([]menu.Item, len(raw))
	for i, it := range raw {
		items[i] = menu.Item{
			ID:               it.ID,
			Name:             it.Name,
			BasePrice:        decimal.NewFromInt(it.BasePrice),
			HasCustomization: it.HasCustomization,
		}
	}
	return items, nil
}

type itemRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
	Sugar    *int   `json:"sugar,omitempty"`
	Ice      *int   `json:"ice,omitempty"`
	Aloe     *bool  `json:"aloe,omitempty"`
}

type placedOrder struct {
	ID    string `json:"id"`
	Total int64  `json:"totalAmount"`
}

func (c *apiClient) placeOrder(ctx context.Context, items []order.LineItem) (*placedOrder, error) {
	reqItems := make([]itemRequest, len(items))
	for i, li := range items {
		reqItems[i] = itemRequest{ItemID: li.MenuID, Quantity: li.Quantity}
		if li.Custom != nil {
			reqItems[i].Sugar = &li.Custom.Sugar
			reqItems[i].Ice = &li.Custom.Ice
			reqItems[i].Aloe = &li.Custom.Aloe
		}
	}

	body, err := json.Marshal(map[string]any{"items": reqItems})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			return nil, errors.Errorf("server rejected order: %s", apiErr.Message)
		}
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	var placed placedOrder
	if err := json.NewDecoder(resp.Body).Decode(&placed); err != nil {
		return nil, errors.Wrap(err, "decode order")
	}
	return &placed, nil
}
