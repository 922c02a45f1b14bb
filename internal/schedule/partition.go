package schedule

import (
	"golang.org/x/net/html"

	"confcal/internal/markup"
)

// Markup conventions of the schedule page.
const (
	dayHeadingTag   = "h2"
	dayHeadingClass = "category"
	timeHeadingTag  = "h3"
	trackNameTag    = "h4"
	paragraphTag    = "p"
	linkTag         = "a"
	emptyRoomClass  = "emptyRoom"
)

// Block is one child of a track list, tagged with the day and time headings
// that govern it. Blocks are produced in document order.
type Block struct {
	Day  string
	Time string
	Node *html.Node
}

// Partition splits the schedule document into blocks using heading
// boundaries only. A day's range runs over the day heading's following
// siblings up to the next day-level heading. Each time heading inside it is
// followed by a track list element whose element children are the blocks.
func Partition(root *html.Node) ([]Block, error) {
	var blocks []Block

	days := markup.FindAll(root, func(n *html.Node) bool {
		return n.Data == dayHeadingTag && markup.HasClass(n, dayHeadingClass)
	})

	for _, dayNode := range days {
		day := markup.Text(dayNode)

		for s := markup.NextElement(dayNode); s != nil; s = markup.NextElement(s) {
			if s.Data == dayHeadingTag {
				break
			}
			if s.Data != timeHeadingTag {
				continue
			}

			at := markup.Text(s)
			list := markup.NextElement(s)
			if list == nil || list.Data == dayHeadingTag || list.Data == timeHeadingTag {
				return nil, &StructuralError{Day: day, Time: at, Reason: "time heading is not followed by a track list"}
			}

			for _, child := range markup.Children(list) {
				blocks = append(blocks, Block{Day: day, Time: at, Node: child})
			}
		}
	}

	return blocks, nil
}
