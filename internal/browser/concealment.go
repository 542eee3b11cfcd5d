package browser

import "strconv"

// Concealment checks decide whether a field that is technically in the
// layout is actually visible to the user. Trap inputs hidden from humans
// must never get a suggestion, since filling them flags the visitor as a bot.

type styleInfo struct {
	Display       string `json:"display"`
	Visibility    string `json:"visibility"`
	Opacity       string `json:"opacity"`
	PointerEvents string `json:"pointerEvents"`
}

type concealmentCheck struct {
	reason string
	match  func(f rawField) bool
}

var concealmentChecks = []concealmentCheck{
	{"Hidden via display:none", func(f rawField) bool { return f.Style.Display == "none" }},
	{"Hidden via visibility:hidden", func(f rawField) bool {
		return f.Style.Visibility == "hidden" || f.Style.Visibility == "collapse"
	}},
	{"Hidden via opacity:0", func(f rawField) bool {
		o, err := strconv.ParseFloat(f.Style.Opacity, 64)
		return err == nil && o == 0
	}},
	{"Positioned off-screen", func(f rawField) bool {
		return f.Rect.Left+f.Rect.Width < -1000 || f.Rect.Top+f.Rect.Height < -1000
	}},
	{"Zero or near-zero size", func(f rawField) bool { return f.Rect.Width < 2 && f.Rect.Height < 2 }},
	{"Marked as aria-hidden", func(f rawField) bool { return f.AriaHidden }},
	{"Pointer events disabled", func(f rawField) bool { return f.Style.PointerEvents == "none" }},
}

// concealmentReasons returns every check f fails. Empty means visible.
func concealmentReasons(f rawField) []string {
	var reasons []string
	for _, c := range concealmentChecks {
		if c.match(f) {
			reasons = append(reasons, c.reason)
		}
	}
	return reasons
}
