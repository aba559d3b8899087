// Command loom replays recorded action traces against the loom kernel and
// inspects their recorded history.
package main

import (
	"github.com/loomsim/loom/internal/cmd"
)

func main() {
	cmd.Execute()
}
