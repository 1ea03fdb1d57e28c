package history_test

import (
	"fmt"
	"strings"

	"github.com/javanhut/ivaldi-history/history"
)

func Example() {
	h := history.New[string]()

	h.Record("draft", history.Immediate())
	h.Record("edit", history.Immediate())
	h.Record("final", history.Immediate())

	fmt.Println(h.Undo().Data)
	fmt.Println(h.Redo().Data)

	h.Undo()
	h.Undo()
	h.Record("rewrite", history.Immediate())

	st := h.State()
	var main []string
	for _, e := range st.Main.Entries {
		main = append(main, e.Data)
	}
	fmt.Println(strings.Join(main, " "))
	fmt.Println(len(st.Branches), "branches")

	// Output:
	// edit
	// final
	// draft rewrite
	// 2 branches
}

func ExampleEngine_Flush() {
	h := history.New[int]()

	h.Record(1)
	h.Record(2)
	h.Record(3)
	h.Flush()

	fmt.Println(h.Current().Data, h.Stats().Entries)
	// Output: 3 1
}
