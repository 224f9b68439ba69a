package a

import (
	"chrono"
	"regexp"
	"slices"
	"sort"
)

type event struct {
	title string
	date  string
}

func badComparator(events []event, eras string) {
	slices.SortFunc(events, func(x, y event) int {
		order := chrono.EraNames(chrono.ParseEraConfig(eras))                                      // want "chrono.EraNames called inside sort comparator" "chrono.ParseEraConfig called inside sort comparator"
		return chrono.Compare(chrono.ParseEventDate(x.date), chrono.ParseEventDate(y.date), order) // want "chrono.ParseEventDate called inside sort comparator" "chrono.ParseEventDate called inside sort comparator"
	})
}

func badLess(events []event) {
	sort.Slice(events, func(i, j int) bool {
		re := regexp.MustCompile(`\d+`) // want "regexp.MustCompile called inside sort comparator"
		return re.FindString(events[i].date) < re.FindString(events[j].date)
	})
}

func badLoop(texts []string) {
	for _, text := range texts {
		re, _ := regexp.Compile(`\d+`) // want "regexp.Compile called inside loop"
		_ = re.FindAllString(text, -1)
	}
}

func goodComparator(events []event, eras string) {
	order := chrono.EraNames(chrono.ParseEraConfig(eras))
	dates := make(map[string]chrono.EventDate, len(events))
	for _, ev := range events {
		dates[ev.title] = chrono.ParseEventDate(ev.date)
	}
	slices.SortFunc(events, func(x, y event) int {
		return chrono.Compare(dates[x.title], dates[y.title], order)
	})
}

func goodPerTimeline(raws []string) [][]string {
	orders := make([][]string, 0, len(raws))
	for _, raw := range raws {
		orders = append(orders, chrono.EraNames(chrono.ParseEraConfig(raw)))
	}
	return orders
}

var digits = regexp.MustCompile(`\d+`)

func goodGlobal(texts []string) {
	for _, text := range texts {
		_ = digits.FindAllString(text, -1)
	}
}
