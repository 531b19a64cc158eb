package mutator

import "fmt"

// ShapeError reports a disagreement between the item count and the rows
// present on the block.
type ShapeError struct {
	Items   int
	Input   string
	Message string
}

func (e *ShapeError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("shape mismatch at %d items: %s: %s", e.Items, e.Input, e.Message)
	}
	return fmt.Sprintf("shape mismatch at %d items: %s", e.Items, e.Message)
}

// Verify checks the block against the core's invariants. The core never
// repairs drift; Verify exists for hosts and tests that want to detect it.
func (c *Core) Verify() error {
	n := c.itemCount
	for i := 0; i < n; i++ {
		if _, ok := c.block.Input(Slot(i)); !ok {
			return &ShapeError{Items: n, Input: Slot(i).String(), Message: "slot row missing"}
		}
	}
	if _, ok := c.block.Input(Slot(n)); ok {
		return &ShapeError{Items: n, Input: Slot(n).String(), Message: "unexpected slot row"}
	}

	_, hasPlaceholder := c.block.Input(Placeholder())
	if n == 0 && !hasPlaceholder {
		return &ShapeError{Items: n, Input: "EMPTY", Message: "placeholder row missing"}
	}
	if n > 0 && hasPlaceholder {
		return &ShapeError{Items: n, Input: "EMPTY", Message: "placeholder row present alongside slots"}
	}

	want := Placeholder()
	if n > 0 {
		want = Slot(0)
	}
	if c.top == nil || c.top.Name() != want {
		return &ShapeError{Items: n, Input: want.String(), Message: "affordances are not on the top row"}
	}
	if _, ok := c.top.Field(FieldPlus); !ok {
		return &ShapeError{Items: n, Input: want.String(), Message: "plus affordance missing"}
	}
	_, hasMinus := c.top.Field(FieldMinus)
	if hasMinus != (n > 0) {
		return &ShapeError{Items: n, Input: want.String(), Message: fmt.Sprintf("minus affordance present=%t", hasMinus)}
	}
	return nil
}
