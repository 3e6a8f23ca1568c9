package logic

// Navigator handles cursor movement and viewport management over a flat list
type Navigator struct {
	selectedIndex  int
	viewportOffset int
	viewportHeight int
	total          int
}

// NewNavigator creates a new navigator
func NewNavigator() *Navigator {
	return &Navigator{viewportHeight: 20}
}

// UpdateState updates the navigator's state
func (n *Navigator) UpdateState(selectedIndex, viewportOffset, viewportHeight, total int) {
	n.selectedIndex = selectedIndex
	n.viewportOffset = viewportOffset
	n.viewportHeight = max(viewportHeight, 1)
	n.total = total
}

// GetSelectedIndex returns the current selected index
func (n *Navigator) GetSelectedIndex() int {
	return n.selectedIndex
}

// GetViewportOffset returns the current viewport offset
func (n *Navigator) GetViewportOffset() int {
	return n.viewportOffset
}

// SetSelectedIndex sets the selected index and ensures it's visible
func (n *Navigator) SetSelectedIndex(index int) (int, int) {
	n.selectedIndex = index
	n.ensureSelectedVisible()
	return n.selectedIndex, n.viewportOffset
}

// Move moves the selection by delta, stopping at either end
func (n *Navigator) Move(delta int) (int, int) {
	return n.SetSelectedIndex(n.selectedIndex + delta)
}

// PageUp moves the selection up by one page, leaving some overlap
func (n *Navigator) PageUp() (int, int) {
	return n.Move(-max(n.viewportHeight-2, 1))
}

// PageDown moves the selection down by one page
func (n *Navigator) PageDown() (int, int) {
	return n.Move(max(n.viewportHeight-2, 1))
}

// Home jumps to the first item
func (n *Navigator) Home() (int, int) {
	return n.SetSelectedIndex(0)
}

// End jumps to the last item
func (n *Navigator) End() (int, int) {
	return n.SetSelectedIndex(n.total - 1)
}

// ensureSelectedVisible adjusts the viewport to keep the selected item visible
func (n *Navigator) ensureSelectedVisible() {
	if n.total == 0 {
		n.selectedIndex = 0
		n.viewportOffset = 0
		return
	}
	n.selectedIndex = max(0, min(n.selectedIndex, n.total-1))

	if n.selectedIndex < n.viewportOffset {
		n.viewportOffset = n.selectedIndex
	}
	if n.selectedIndex >= n.viewportOffset+n.viewportHeight {
		n.viewportOffset = n.selectedIndex - n.viewportHeight + 1
	}

	maxOffset := max(n.total-n.viewportHeight, 0)
	if n.viewportOffset > maxOffset {
		n.viewportOffset = maxOffset
	}
	if n.viewportOffset < 0 {
		n.viewportOffset = 0
	}
}
