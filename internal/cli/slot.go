package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/adriangreen/tm-list/internal/memory"
	"github.com/spf13/cobra"
)

// newSlotCommand exposes the raw key-value store for inspection and repair.
// Keys default to the configured list key.
func newSlotCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Inspect or repair the raw stored value",
	}

	cmd.AddCommand(
		newSlotKeysCommand(opts),
		newSlotGetCommand(opts),
		newSlotPutCommand(opts),
		newSlotDeleteCommand(opts),
	)
	return cmd
}

func newSlotKeysCommand(opts *options) *cobra.Command {
	var (
		prefix string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			keys, err := s.mem.List(cmd.Context(), prefix)
			if err != nil {
				return fmt.Errorf("failed to list keys: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(keys, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			for _, k := range keys {
				fmt.Fprintln(out, k)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "only keys starting with prefix")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newSlotGetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print the raw value stored under key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			key := slotKey(s, args)
			data, err := s.mem.Retrieve(cmd.Context(), key)
			if errors.Is(err, memory.ErrKeyNotFound) {
				return fmt.Errorf("key not found: %s", key)
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", key, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newSlotPutCommand(opts *options) *cobra.Command {
	var (
		file   string
		value  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "put [key]",
		Short: "Overwrite the value stored under key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			switch {
			case file == "-":
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				data = b
			case file != "":
				b, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", file, err)
				}
				data = b
			case value != "":
				data = []byte(value)
			default:
				return errors.New("either --file or --value must be provided")
			}

			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			key := slotKey(s, args)
			if asJSON {
				var v interface{}
				if err := json.Unmarshal(data, &v); err != nil {
					return fmt.Errorf("value is not valid JSON: %w", err)
				}
				err = memory.StoreJSON(cmd.Context(), s.mem, key, v)
			} else {
				err = s.mem.Store(cmd.Context(), key, data)
			}
			if err != nil {
				return fmt.Errorf("failed to store %s: %w", key, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "read the value from a file ('-' for stdin)")
	cmd.Flags().StringVar(&value, "value", "", "the value itself")
	cmd.Flags().BoolVar(&asJSON, "json", false, "reject values that are not valid JSON")
	return cmd
}

func newSlotDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [key]",
		Short: "Remove key; the list starts empty next time",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			key := slotKey(s, args)
			if err := s.mem.Delete(cmd.Context(), key); err != nil {
				return fmt.Errorf("failed to delete %s: %w", key, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", key)
			return nil
		},
	}
}

func slotKey(s *session, args []string) string {
	if len(args) == 1 && args[0] != "" {
		return args[0]
	}
	return s.store.Key()
}
