package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dropedev/MeuAssistente/internal/domain"
)

// Files names the data files inside the data directory.
type Files struct {
	Products string
	Orders   string
	Policies string
}

// DefaultFiles are the file names used when none are configured.
var DefaultFiles = Files{
	Products: "produtos.json",
	Orders:   "pedidos.json",
	Policies: "politicas.md",
}

// LoadFromDir reads products, orders and the policy document from dir.
// Missing files yield empty collections.
func LoadFromDir(dir string, files Files) (*Data, error) {
	if files.Products == "" {
		files.Products = DefaultFiles.Products
	}
	if files.Orders == "" {
		files.Orders = DefaultFiles.Orders
	}
	if files.Policies == "" {
		files.Policies = DefaultFiles.Policies
	}

	data := &Data{}

	if err := readJSON(filepath.Join(dir, files.Products), &data.Products); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, files.Orders), &data.Orders); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(dir, files.Policies))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, domain.IOError("read policies", err)
	default:
		data.Policies = string(raw)
	}

	if data.Products == nil {
		data.Products = []Product{}
	}
	if data.Orders == nil {
		data.Orders = []Order{}
	}

	if err := data.Validate(); err != nil {
		return nil, domain.ValidationError("invalid catalog data", err)
	}

	return data, nil
}

func readJSON(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return domain.IOError(fmt.Sprintf("read %s", filepath.Base(path)), err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return domain.IOError(fmt.Sprintf("parse %s", filepath.Base(path)), err)
	}
	return nil
}
