package httputil_test

import (
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/componentscope/pkg/httputil"
)

func ExampleCache_Namespace() {
	dir, _ := os.MkdirTemp("", "componentscope-http")
	defer os.RemoveAll(dir)

	c, err := httputil.NewCache(dir, 24*time.Hour)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	files := c.Namespace("figma:file:")
	_ = files.Set("aBcD1234", map[string]string{"name": "Design System"})

	var meta map[string]string
	ok, _ := files.Get("aBcD1234", &meta)
	fmt.Println(ok, meta["name"])

	ok, _ = c.Get("aBcD1234", &meta)
	fmt.Println(ok)
	// Output:
	// true Design System
	// false
}
