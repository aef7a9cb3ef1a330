package infrastructure

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"weekly/internal/config"
	shareddomain "weekly/internal/shared/domain"
	"weekly/internal/shared/infrastructure"
)

// Types de dépôt acceptés par StageFiles
const (
	UploadSales     = "sales"
	UploadInventory = "inventory"
	UploadAMS       = "ams"
	UploadMaster    = "master"
)

// ErrUnsupportedUpload type de dépôt ou extension refusés
var ErrUnsupportedUpload = errors.New("unsupported upload")

var uploadExtensions = map[string]struct{}{".xlsx": {}, ".xlsm": {}, ".csv": {}}

// StageTarget dossier de destination d'un dépôt dans l'arborescence brute
func StageTarget(cfg *config.Config, kind, brand string, week int) (string, error) {
	b := shareddomain.NewBrand(brand)
	switch kind {
	case UploadSales, UploadInventory:
		if week <= 0 {
			return "", fmt.Errorf("%w: %s upload needs a week", ErrUnsupportedUpload, kind)
		}
		root := cfg.RawSalesDir()
		if kind == UploadInventory {
			root = cfg.RawInventoryDir()
		}
		dir := filepath.Join(root, shareddomain.WeekLabel(week))
		if !b.IsZero() {
			dir = filepath.Join(dir, b.Label())
		}
		return dir, nil
	case UploadAMS:
		if b.IsZero() {
			return "", fmt.Errorf("%w: ams upload needs a brand", ErrUnsupportedUpload)
		}
		return filepath.Join(cfg.AMSDir(), b.Label()), nil
	case UploadMaster:
		return filepath.Dir(cfg.MasterFile()), nil
	}
	return "", fmt.Errorf("%w: type %q (expected sales, inventory, ams or master)", ErrUnsupportedUpload, kind)
}

// StageFiles copie des fichiers déposés dans l'arborescence brute et retourne les chemins écrits
// Le master est toujours renommé sku_master.xlsx; les autres fichiers gardent leur nom
func StageFiles(cfg *config.Config, kind, brand string, week int, files []string) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no file selected", ErrUnsupportedUpload)
	}
	var invalid []string
	for _, f := range files {
		if _, ok := uploadExtensions[strings.ToLower(filepath.Ext(f))]; !ok {
			invalid = append(invalid, filepath.Base(f))
		}
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: invalid file type %s, only xlsx or csv allowed", ErrUnsupportedUpload, strings.Join(invalid, ", "))
	}
	dir, err := StageTarget(cfg, kind, brand, week)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		target := filepath.Join(dir, filepath.Base(f))
		if kind == UploadMaster {
			target = cfg.MasterFile()
		}
		if err := copyFile(f, target); err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer in.Close()
	return infrastructure.WriteFileAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}
