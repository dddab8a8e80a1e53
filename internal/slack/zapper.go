package slack

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// Zapper deletes just-sent messages after a delay or a keypress. A
// scheduling convenience for trying out reports without littering the
// channel.
type Zapper struct {
	When   string
	Action func() error
}

// NewZapper creates a zapper. When is either a duration ("5s") or
// "keypress".
func NewZapper(when string, action func() error) *Zapper {
	return &Zapper{When: when, Action: action}
}

// Check validates the zap configuration.
func (z *Zapper) Check() error {
	if z.When == "" {
		return nil
	}
	if strings.HasPrefix(z.When, "key") {
		return nil
	}
	if _, err := time.ParseDuration(z.When); err != nil {
		return fmt.Errorf(
			"invalid configuration for zap: %q: provide a duration (e.g. 5s) or `keypress`", z.When)
	}
	return nil
}

// Process waits per configuration and runs the action. A zapper without
// a configured trigger does nothing.
func (z *Zapper) Process() error {
	if z.When == "" {
		return nil
	}
	if err := z.Check(); err != nil {
		return err
	}
	if strings.HasPrefix(z.When, "key") {
		fmt.Fprintln(os.Stderr, "Press enter to zap messages and continue.")
		reader := bufio.NewReader(os.Stdin)
		if _, err := reader.ReadString('\n'); err != nil {
			return err
		}
	} else {
		duration, _ := time.ParseDuration(z.When)
		time.Sleep(duration)
	}
	return z.Action()
}
