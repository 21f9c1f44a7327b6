package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/handover-protocol/handover-go/pkg/button"
	"github.com/handover-protocol/handover-go/pkg/coordinator"
	"github.com/handover-protocol/handover-go/pkg/gatt"
	"github.com/handover-protocol/handover-go/pkg/ndef"
)

// Console is the interactive command loop for handover-device.
type Console struct {
	coord   *coordinator.Coordinator
	stack   *SimStack
	attrs   *gatt.Server
	trigger *button.Classifier
	rl      *readline.Instance
}

// NewConsole creates the interactive console.
func NewConsole(coord *coordinator.Coordinator, stack *SimStack, attrs *gatt.Server, trigger *button.Classifier) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "handover> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{
		coord:   coord,
		stack:   stack,
		attrs:   attrs,
		trigger: trigger,
		rl:      rl,
	}, nil
}

// Run starts the interactive command loop and blocks until exit.
func (c *Console) Run() {
	defer c.rl.Close()

	c.printHelp()

	for {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "status", "s":
			c.cmdStatus()

		case "record", "r":
			c.cmdRecord()

		case "press", "p":
			c.cmdPress(args)

		case "hold":
			c.cmdHold()

		case "connect":
			c.reportErr(c.stack.PeerConnect())

		case "disconnect":
			c.reportErr(c.stack.PeerDisconnect())

		case "pair":
			c.reportErr(c.stack.PeerPair())

		case "encrypt":
			c.reportErr(c.stack.PeerEncrypt())

		case "subscribe", "sub":
			c.reportErr(c.stack.PeerSubscribe(true))

		case "unsubscribe", "unsub":
			c.reportErr(c.stack.PeerSubscribe(false))

		case "keys":
			c.cmdKeys()

		case "reset":
			c.reportErr(c.coord.ResetBonding())

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Handover Device Commands:
  Device:
    status             - Show coordinator state, address and bond status
    record             - Hexdump the handover record on the tag
    press [ms]         - Press the button for a duration (default 200ms)
    hold               - Press the button past the reset threshold
    reset              - Clear bonding state directly
    keys               - Show stored peer link keys and identity keys

  Simulated Peer:
    connect            - Establish a link from a simulated peer
    disconnect         - Drop the peer link
    pair               - Run the OOB pairing procedure on the current link
    encrypt            - Re-encrypt the link as the bonded peer (reconnect)
    subscribe          - Write the notification subscription descriptor
    unsubscribe        - Clear the notification subscription descriptor

  General:
    help               - Show this help
    quit               - Exit`)
}

func (c *Console) cmdStatus() {
	out := c.rl.Stdout()
	addr := c.coord.Address()
	fmt.Fprintf(out, "State:        %s\n", c.coord.State())
	fmt.Fprintf(out, "Address:      %02X:%02X:%02X:%02X:%02X:%02X\n",
		addr[0], addr[1], addr[2], addr[3], addr[4], addr[5])
	fmt.Fprintf(out, "Bonded:       %v\n", c.coord.Bonded())
	fmt.Fprintf(out, "Advertising:  %v\n", c.stack.Advertising())
	fmt.Fprintf(out, "Connected:    %v (conn=%d)\n", c.stack.Connected(), c.attrs.ConnectionID())
	fmt.Fprintf(out, "Subscribed:   %v\n", c.attrs.Subscribed())
}

func (c *Console) cmdRecord() {
	out := c.rl.Stdout()
	image := c.stack.Tag().Image(coordinator.NDEFFileID)
	if len(image) == 0 {
		fmt.Fprintln(out, "Tag is empty")
		return
	}
	for off := 0; off < len(image); off += 16 {
		end := off + 16
		if end > len(image) {
			end = len(image)
		}
		fmt.Fprintf(out, "  %04X  %X\n", off, image[off:end])
	}
	fmt.Fprintf(out, "Address field:      %X\n", image[ndef.DeviceAddressOffset:ndef.DeviceAddressOffset+ndef.DeviceAddressLength])
	fmt.Fprintf(out, "Confirmation field: %X\n", image[ndef.ConfirmationOffset:ndef.ConfirmationOffset+ndef.ValueLength])
	fmt.Fprintf(out, "Random field:       %X\n", image[ndef.RandomOffset:ndef.RandomOffset+ndef.ValueLength])
}

// cmdPress simulates a timed button press. The tick loop runs the same
// period the classifier is configured with.
func (c *Console) cmdPress(args []string) {
	duration := 200 * time.Millisecond
	if len(args) > 0 {
		ms, err := strconv.Atoi(args[0])
		if err != nil || ms < 0 {
			fmt.Fprintf(c.rl.Stdout(), "Invalid duration: %s\n", args[0])
			return
		}
		duration = time.Duration(ms) * time.Millisecond
	}
	c.pressFor(duration)
}

func (c *Console) cmdHold() {
	c.pressFor(button.DefaultLongPressThreshold + button.DefaultTickPeriod)
}

// pressFor drives the classifier through a press of the given duration
// without sleeping: ticks advance synthetically at the tick period.
func (c *Console) pressFor(duration time.Duration) {
	c.trigger.Press()
	for elapsed := time.Duration(0); elapsed < duration; elapsed += button.DefaultTickPeriod {
		c.trigger.Tick()
	}
	if err := c.trigger.Release(); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Button action failed: %v\n", err)
	}
}

func (c *Console) cmdKeys() {
	out := c.rl.Stdout()
	if peer, err := c.coord.PeerKeys(); err != nil {
		fmt.Fprintf(out, "Peer keys:     unavailable (%v)\n", err)
	} else {
		fmt.Fprintf(out, "Peer keys:     %X\n", peer)
	}
	if identity, err := c.coord.IdentityKeys(); err != nil {
		fmt.Fprintf(out, "Identity keys: unavailable (%v)\n", err)
	} else {
		fmt.Fprintf(out, "Identity keys: %X\n", identity)
	}
}

func (c *Console) reportErr(err error) {
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
	}
}
