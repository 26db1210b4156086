package admin

// Navigator moves between screens. The console implements it; params carry
// screen arguments and may be nil.
type Navigator interface {
	NavigateTo(screen string, params map[string]any)
	GoBack()
}
