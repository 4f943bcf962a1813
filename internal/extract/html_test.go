package extract

import (
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

func TestCompiledSelectorsDriveTreeHelpers(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<div id="root">
<h2 id="november-video-game-releases">November</h2>
<p>intro</p>
<ul><li>Stalker 2 (Xbox Series X) - November 20</li><li>Call of Duty - November 25</li></ul>
<table><tr><td>a</td><th>b</th><td>c</td></tr></table>
</div>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	heading := cascadia.Query(doc, gamesRadarHeading)
	if heading == nil {
		t.Fatal("heading not found")
	}
	if list := nextSiblingMatching(heading, listSel); list == nil || list.Data != "ul" {
		t.Fatalf("nextSiblingMatching = %v", list)
	}
	if items := listItems(heading); len(items) != 2 {
		t.Fatalf("listItems returned %d items", len(items))
	}

	row := cascadia.Query(doc, rowSel)
	if cells := children(row, tdSel); len(cells) != 2 || textContent(cells[1]) != "c" {
		t.Fatalf("children(td) = %d cells", len(cells))
	}

	lines := headingListLines(doc, gamesRadarHeading)
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "Stalker 2") {
		t.Fatalf("headingListLines = %q", lines)
	}
}
