package cli

import (
	indexfile "BTreeIdx/storage_engine/access/indexfile_manager"
	"BTreeIdx/types"
	"bufio"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const prompt = "btree> "

// repl keeps one index open and reads commands from the input until EOF or
// exit. Errors inside the session are reported and the session goes on.
func (c *Cli) repl(args []string) error {
	return c.withIndex(args[0], func(f *indexfile.IndexFile) error {
		c.printReplHelp()
		scanner := bufio.NewScanner(c.in)
		for {
			fmt.Fprint(c.out, prompt)
			if !scanner.Scan() { // Ctrl+D
				fmt.Fprintln(c.out)
				break
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}
			cmd := strings.ToLower(fields[0])
			if cmd == "exit" || cmd == "quit" {
				break
			}
			if err := c.replLine(f, cmd, fields[1:]); err != nil {
				if errors.Is(err, errUsage) {
					fmt.Fprintln(c.out, err)
					continue
				}
				c.logger.Debug("repl command failed", zap.String("command", cmd), zap.Error(err))
				c.red.Fprintln(c.out, message(err))
			}
		}
		return scanner.Err()
	})
}

func (c *Cli) printReplHelp() {
	fmt.Fprintln(c.out, `
B-Tree index session

Available Commands:
  INSERT <key> <value>  Insert a key/value pair
  SEARCH <key>          Print the pair stored under key
  PRINT                 Print every pair in key order
  STATS                 Show header, shape and size
  VERIFY                Check the tree structure
  EXIT                  Close the index and leave`)
}

func (c *Cli) replLine(f *indexfile.IndexFile, cmd string, args []string) error {
	switch cmd {
	case "insert":
		if len(args) != 2 {
			return fmt.Errorf("%w: INSERT <key> <value>", errUsage)
		}
		key, err := parseUint("key", args[0])
		if err != nil {
			return err
		}
		value, err := parseUint("value", args[1])
		if err != nil {
			return err
		}
		return f.Insert(key, value)

	case "search":
		if len(args) != 1 {
			return fmt.Errorf("%w: SEARCH <key>", errUsage)
		}
		key, err := parseUint("key", args[0])
		if err != nil {
			return err
		}
		value, err := f.Search(key)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, types.Pair{Key: key, Value: value})
		return nil

	case "print":
		return f.Traverse(func(p types.Pair) error {
			_, err := fmt.Fprintln(c.out, p)
			return err
		})

	case "stats":
		s, err := f.Stats()
		if err != nil {
			return err
		}
		c.writeStats(s)
		return nil

	case "verify":
		if _, err := f.Verify(); err != nil {
			return err
		}
		c.green.Fprintln(c.out, "OK")
		return nil

	case "help":
		c.printReplHelp()
		return nil

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}
