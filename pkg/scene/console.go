package scene

import (
	"fmt"
	"io"
	"strings"

	"layercomp/pkg/logging"

	"github.com/dop251/goja"
)

// consoleAPI implements console.log, console.warn, and console.error.
// log writes to the scene output, the others go to the logger.
type consoleAPI struct {
	out io.Writer
}

func (c *consoleAPI) register(vm *goja.Runtime) {
	console := vm.NewObject()
	console.Set("log", c.log)
	console.Set("warn", c.warn)
	console.Set("error", c.errorFn)
	vm.Set("console", console)
}

func (c *consoleAPI) log(call goja.FunctionCall) goja.Value {
	fmt.Fprintln(c.out, formatArgs(call.Arguments))
	return goja.Undefined()
}

func (c *consoleAPI) warn(call goja.FunctionCall) goja.Value {
	logging.Logger().Warn(formatArgs(call.Arguments), "source", "scene")
	return goja.Undefined()
}

func (c *consoleAPI) errorFn(call goja.FunctionCall) goja.Value {
	logging.Logger().Error(formatArgs(call.Arguments), "source", "scene")
	return goja.Undefined()
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
