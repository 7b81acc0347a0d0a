package services

import (
	"fmt"
	"strconv"
	"strings"
)

// LineItem is one stored basket entry. Repeated titles mean repeated adds.
type LineItem struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

// BasketEntry is a line item coalesced by title.
type BasketEntry struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

// Basket is the persisted state of one browser's basket.
type Basket struct {
	Items        []LineItem `json:"items"`
	RestaurantID *int64     `json:"restaurant_id"`
	Updated      int64      `json:"updated"` // unix millis of the last write
}

// Group coalesces items by title in order of first appearance. The first
// price seen for a title wins.
func Group(items []LineItem) []BasketEntry {
	entries := make([]BasketEntry, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if i, ok := index[it.Title]; ok {
			entries[i].Quantity++
			continue
		}
		index[it.Title] = len(entries)
		entries = append(entries, BasketEntry{Title: it.Title, Price: it.Price, Quantity: 1})
	}
	return entries
}

// Flatten is the inverse of Group: each entry is repeated Quantity times.
func Flatten(entries []BasketEntry) []LineItem {
	items := make([]LineItem, 0, len(entries))
	for _, e := range entries {
		for i := 0; i < e.Quantity; i++ {
			items = append(items, LineItem{Title: e.Title, Price: e.Price})
		}
	}
	return items
}

// Increase bumps the quantity of title by one. Unknown titles are ignored.
func Increase(entries []BasketEntry, title string) []BasketEntry {
	out := make([]BasketEntry, len(entries))
	for i, e := range entries {
		if e.Title == title {
			e.Quantity++
		}
		out[i] = e
	}
	return out
}

// Decrease lowers the quantity of title by one while it is above one.
// The last unit of an entry is only dropped through Remove or Clear.
func Decrease(entries []BasketEntry, title string) []BasketEntry {
	out := make([]BasketEntry, 0, len(entries))
	for _, e := range entries {
		if e.Title == title && e.Quantity > 1 {
			e.Quantity--
		}
		if e.Quantity > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Remove drops every unit of title.
func Remove(entries []BasketEntry, title string) []BasketEntry {
	out := make([]BasketEntry, 0, len(entries))
	for _, e := range entries {
		if e.Title != title {
			out = append(out, e)
		}
	}
	return out
}

// Total is the sum of price times quantity over entries.
func Total(entries []BasketEntry) float64 {
	var total float64
	for _, e := range entries {
		total += ParsePrice(e.Price) * float64(e.Quantity)
	}
	return total
}

// Count is the number of units across entries.
func Count(entries []BasketEntry) int {
	n := 0
	for _, e := range entries {
		n += e.Quantity
	}
	return n
}

// ParsePrice reads the leading decimal number of a display price such as
// "9.99 dollars" or "$2.19". Text without a leading number is worth 0.
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, "$", ""))
	end := 0
	seenDot, seenDigit := false, false
scan:
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' && !seenDot:
			seenDot = true
		case (c == '-' || c == '+') && end == 0:
		default:
			break scan
		}
		end++
	}
	if !seenDigit {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatMoney renders an amount with two decimals, e.g. "$12.50".
func FormatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
