package layer

import "fmt"

// Assert panics with msg when cond is false. Violations are programmer
// errors; continuing would leave caches or the tree inconsistent.
func Assert(cond bool, msg string) {
	if !cond {
		panic("layer: " + msg)
	}
}

func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("layer: "+format, args...))
	}
}
