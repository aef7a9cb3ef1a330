package infrastructure

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"weekly/internal/config"
	shareddomain "weekly/internal/shared/domain"
)

var fileWeek = regexp.MustCompile(`(?i)week[\s_-]*(\d+)`)

// FileWeek extrait la semaine d'un nom de fichier ou de dossier ("business_report_week52.xlsx", "Week 3")
func FileWeek(name string) (int, bool) {
	m := fileWeek.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	w, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return w, true
}

// isSpreadsheet ignore les fichiers temporaires d'Excel ("~$...")
func isSpreadsheet(name string) bool {
	if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".xlsx" || ext == ".xlsm"
}

func missingDir(stage, dir string) shareddomain.Issue {
	return shareddomain.Issue{
		Severity: shareddomain.SeverityDiagnostic,
		Stage:    stage,
		Path:     dir,
		Message:  fmt.Sprintf("%s: directory not found", shareddomain.ErrMissingInput),
	}
}

// subdirs liste les sous-dossiers triés par nom
func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// weekDir dossier de semaine détecté sous une racine
type weekDir struct {
	Week int
	Name string
	Path string
}

// weekDirs liste les dossiers de semaine d'une racine ("Week 52", "W52", "52"), triés par semaine
// Un dossier sans chiffres est écarté avec un incident
func weekDirs(root, stage string, issues *shareddomain.Issues) ([]weekDir, error) {
	names, err := subdirs(root)
	if err != nil {
		return nil, err
	}
	var out []weekDir
	for _, name := range names {
		w, err := shareddomain.ExtractWeek(name)
		if err != nil {
			issues.Add(invalidWeekDir(stage, filepath.Join(root, name), err))
			continue
		}
		out = append(out, weekDir{Week: w, Name: name, Path: filepath.Join(root, name)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out, nil
}

func invalidWeekDir(stage, path string, err error) shareddomain.Issue {
	return shareddomain.Issue{Severity: shareddomain.SeverityFatalRow, Stage: stage, Path: path, Message: err.Error()}
}

// SalesUnit couple (semaine, dossier marque) de data/raw/sales
// BrandFolder vide: ancien mode mono-marque (fichiers directement sous Week N)
type SalesUnit struct {
	Week        int
	BrandFolder string
	Dir         string
}

// Brand retourne la marque du dossier
func (u SalesUnit) Brand() shareddomain.Brand {
	return shareddomain.NewBrand(u.BrandFolder)
}

// AmazonFile chemin attendu du rapport Amazon
func (u SalesUnit) AmazonFile() string { return filepath.Join(u.Dir, "amazon_sales.xlsx") }

// OtherChannelsFile chemin attendu du rapport multi-canal
func (u SalesUnit) OtherChannelsFile() string { return filepath.Join(u.Dir, "other_channels.xlsx") }

// DiscoverSalesUnits parcourt data/raw/sales/Week<N>/<brand>/
func DiscoverSalesUnits(root string, issues *shareddomain.Issues) ([]SalesUnit, error) {
	issues = ensure(issues)
	weeks, err := weekDirs(root, "sales", issues)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			issues.Add(missingDir("sales", root))
			return nil, nil
		}
		return nil, err
	}
	var units []SalesUnit
	for _, wd := range weeks {
		brands, err := subdirs(wd.Path)
		if err != nil {
			return nil, err
		}
		if len(brands) == 0 {
			units = append(units, SalesUnit{Week: wd.Week, Dir: wd.Path})
			continue
		}
		for _, b := range brands {
			units = append(units, SalesUnit{Week: wd.Week, BrandFolder: b, Dir: filepath.Join(wd.Path, b)})
		}
	}
	return units, nil
}

// AMSUnit couple (semaine, marque) de data/ams_weekly_data
// AdsFile vide si aucun rapport publicitaire pour la semaine
type AMSUnit struct {
	Week         int
	BrandFolder  string
	BusinessFile string
	AdsFile      string
}

// Brand retourne la marque du dossier
func (u AMSUnit) Brand() shareddomain.Brand {
	return shareddomain.NewBrand(u.BrandFolder)
}

// DiscoverAMSUnits parcourt data/ams_weekly_data/<brand>/ et garde les window dernières semaines
// par marque (0 = toutes). Les semaines viennent des business reports.
func DiscoverAMSUnits(root string, window int, issues *shareddomain.Issues) ([]AMSUnit, error) {
	issues = ensure(issues)
	brands, err := subdirs(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			issues.Add(missingDir("ams", root))
			return nil, nil
		}
		return nil, err
	}

	var units []AMSUnit
	for _, brand := range brands {
		if _, reserved := config.ReservedAMSDirs[strings.ToLower(brand)]; reserved {
			continue
		}
		dir := filepath.Join(root, brand)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}

		business := make(map[int]string)
		ads := make(map[int]string)
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !isSpreadsheet(name) {
				continue
			}
			lower := strings.ToLower(name)
			w, ok := FileWeek(lower)
			if !ok {
				continue
			}
			switch {
			case strings.HasPrefix(lower, "business_report"):
				if _, dup := business[w]; !dup {
					business[w] = filepath.Join(dir, name)
				}
			case strings.HasPrefix(lower, "ads_report"):
				if _, dup := ads[w]; !dup {
					ads[w] = filepath.Join(dir, name)
				}
			}
		}

		weeks := make([]int, 0, len(business))
		for w := range business {
			weeks = append(weeks, w)
		}
		sort.Ints(weeks)
		if len(weeks) == 0 {
			issues.Add(shareddomain.Issue{Severity: shareddomain.SeverityDiagnostic, Stage: "ams", Path: dir, Brand: brand,
				Message: "no business reports found"})
			continue
		}
		if window > 0 && len(weeks) > window {
			weeks = weeks[len(weeks)-window:]
		}
		for _, w := range weeks {
			if ads[w] == "" {
				issues.Add(shareddomain.Issue{Severity: shareddomain.SeverityDiagnostic, Stage: "ams", Path: dir, Week: w, Brand: brand,
					Message: fmt.Sprintf("%s: ads_report_week%d", shareddomain.ErrMissingInput, w)})
			}
			units = append(units, AMSUnit{Week: w, BrandFolder: brand, BusinessFile: business[w], AdsFile: ads[w]})
		}
	}
	return units, nil
}

// InventoryFile fichier d'inventaire trouvé sous data/raw/inventory
type InventoryFile struct {
	Path        string
	Week        int
	BrandFolder string
}

// DiscoverInventoryFiles parcourt récursivement data/raw/inventory/<semaine>/<marque>/
// Un dossier de premier niveau sans chiffres et les fichiers posés à la racine sont écartés avec un incident
func DiscoverInventoryFiles(root string, issues *shareddomain.Issues) ([]InventoryFile, error) {
	issues = ensure(issues)
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		issues.Add(missingDir("inventory", root))
		return nil, nil
	}

	var files []InventoryFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(rel, string(filepath.Separator))
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if len(parts) == 1 {
				if _, err := shareddomain.ExtractWeek(d.Name()); err != nil {
					issues.Add(invalidWeekDir("inventory", path, err))
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !isSpreadsheet(d.Name()) {
			return nil
		}
		if len(parts) == 1 {
			issues.Add(shareddomain.Issue{Severity: shareddomain.SeverityFatalRow, Stage: "inventory", Path: path,
				Message: "inventory file outside a week folder"})
			return nil
		}
		w, err := shareddomain.ExtractWeek(parts[0])
		if err != nil {
			return nil
		}
		f := InventoryFile{Path: path, Week: w}
		if len(parts) > 2 {
			f.BrandFolder = parts[1]
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// PositionSnapshotName nom du fichier de positions d'inventaire par marque
const PositionSnapshotName = "Inventory Snapshot.xlsx"

// DiscoverLatestPositionFiles retourne les fichiers de positions de la dernière semaine
func DiscoverLatestPositionFiles(root string, issues *shareddomain.Issues) ([]InventoryFile, error) {
	issues = ensure(issues)
	weeks, err := weekDirs(root, "inventory", issues)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			issues.Add(missingDir("inventory", root))
			return nil, nil
		}
		return nil, err
	}
	if len(weeks) == 0 {
		return nil, nil
	}
	latest := weeks[len(weeks)-1]

	brands, err := subdirs(latest.Path)
	if err != nil {
		return nil, err
	}
	var files []InventoryFile
	for _, b := range brands {
		dir := filepath.Join(latest.Path, b)
		path, ok := findFold(dir, PositionSnapshotName)
		if !ok {
			issues.Add(shareddomain.Issue{Severity: shareddomain.SeverityDiagnostic, Stage: "inventory", Path: dir, Week: latest.Week, Brand: b,
				Message: fmt.Sprintf("%s: %s", shareddomain.ErrMissingInput, PositionSnapshotName)})
			continue
		}
		files = append(files, InventoryFile{Path: path, Week: latest.Week, BrandFolder: b})
	}
	return files, nil
}

// findFold cherche un fichier par nom sans tenir compte de la casse
func findFold(dir, name string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), name) {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}
