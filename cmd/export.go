package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/frahmantamala/access-admin/internal/storage"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the stored collections as one JSON document",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		deps, err := initializeDependencies(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		var out io.Writer = os.Stdout
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		dump, err := exportCollections(ctx, deps)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(dump)
	},
}

type kvRow struct {
	Key   string `db:"storage_key"`
	Value string `db:"value"`
}

// exportCollections returns the raw stored documents keyed by collection. SQL
// storage is read straight from kv_entries; Redis goes through the store.
func exportCollections(ctx context.Context, deps *Dependencies) (map[string]json.RawMessage, error) {
	dump := make(map[string]json.RawMessage, 3)
	keys := []string{storage.KeyUsers, storage.KeyRoles, storage.KeyPermissions}

	if deps.DB != nil {
		query, args, err := sqlx.In(`SELECT storage_key, value FROM kv_entries WHERE storage_key IN (?)`, keys)
		if err != nil {
			return nil, err
		}
		var rows []kvRow
		if err := deps.DB.SelectContext(ctx, &rows, deps.DB.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		for _, r := range rows {
			dump[r.Key] = asJSON([]byte(r.Value))
		}
	} else {
		for _, key := range keys {
			raw, found, err := deps.KV.Get(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("export %s: %w", key, err)
			}
			if found {
				dump[key] = asJSON(raw)
			}
		}
	}

	for _, key := range keys {
		if _, ok := dump[key]; !ok {
			dump[key] = json.RawMessage("[]")
		}
	}
	return dump, nil
}

// asJSON keeps a stored document as is, or quotes it when it is not valid JSON
// so a corrupt collection still shows up in the dump.
func asJSON(raw []byte) json.RawMessage {
	if json.Valid(raw) {
		return raw
	}
	quoted, _ := json.Marshal(string(raw))
	return quoted
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")
}
