package transform_test

import (
	"fmt"

	"github.com/matzehuels/componentscope/pkg/hierarchy"
	"github.com/matzehuels/componentscope/pkg/hierarchy/transform"
)

func ExamplePropagate() {
	h := hierarchy.New()
	h.Ensure("a", "Card")
	h.Ensure("b", "Button")
	h.Ensure("c", "Icon")
	_ = h.Link("a", "b")
	_ = h.Link("b", "c")

	transform.Propagate(h)

	card, _ := h.Get("a")
	fmt.Println(card.Direct(), card.Children())
	// Output: [b] [b c]
}
