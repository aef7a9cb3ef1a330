package domain

import (
	"fmt"
	"sort"
)

// PartitionKey identifie un lot déjà écrit: (semaine, marque, classe de canal)
type PartitionKey struct {
	Week  int
	Brand string
	Class string
}

// String formate la clé pour les logs
func (k PartitionKey) String() string {
	return fmt.Sprintf("week=%d brand=%q class=%s", k.Week, k.Brand, k.Class)
}

// Codec décrit la forme CSV d'un type de ligne et sa partition
type Codec[T any] interface {
	Header() []string
	Encode(row T) []string
	Decode(record map[string]string) (T, error)
	Partition(row T) PartitionKey
	Less(a, b T) bool
}

// MergeMode politique de fusion avec l'historique
type MergeMode int

const (
	// MergeAppend conserve les partitions existantes; les partitions entrantes déjà présentes sont ignorées
	MergeAppend MergeMode = iota
	// MergeReplace remplace les partitions existantes par les partitions entrantes
	MergeReplace
)

// MergeResult résultat d'une fusion
type MergeResult[T any] struct {
	Rows     []T
	Added    []PartitionKey
	Skipped  []PartitionKey
	Replaced []PartitionKey
}

// Merge fusionne les lignes entrantes dans l'historique puis trie le tout
// La sortie ne dépend que du contenu: deux fusions identiques donnent le même ordre
func Merge[T any](codec Codec[T], existing, incoming []T, mode MergeMode) MergeResult[T] {
	have := Partitions(codec, existing)
	want := Partitions(codec, incoming)

	var res MergeResult[T]
	rows := make([]T, 0, len(existing)+len(incoming))

	switch mode {
	case MergeReplace:
		for _, r := range existing {
			if _, replaced := want[codec.Partition(r)]; !replaced {
				rows = append(rows, r)
			}
		}
		rows = append(rows, incoming...)
		for _, k := range sortedKeys(want) {
			if _, ok := have[k]; ok {
				res.Replaced = append(res.Replaced, k)
			} else {
				res.Added = append(res.Added, k)
			}
		}
	default:
		rows = append(rows, existing...)
		for _, r := range incoming {
			if _, present := have[codec.Partition(r)]; !present {
				rows = append(rows, r)
			}
		}
		for _, k := range sortedKeys(want) {
			if _, ok := have[k]; ok {
				res.Skipped = append(res.Skipped, k)
			} else {
				res.Added = append(res.Added, k)
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return codec.Less(rows[i], rows[j]) })
	res.Rows = rows
	return res
}

// Partitions retourne l'ensemble des partitions présentes
func Partitions[T any](codec Codec[T], rows []T) map[PartitionKey]struct{} {
	out := make(map[PartitionKey]struct{})
	for _, r := range rows {
		out[codec.Partition(r)] = struct{}{}
	}
	return out
}

// Normalize fait passer rows par leur forme CSV (Encode puis Decode)
// Les lignes calculées en mémoire deviennent identiques à celles relues depuis le snapshot
func Normalize[T any](codec Codec[T], rows []T) ([]T, error) {
	header := codec.Header()
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		values := codec.Encode(row)
		record := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(values) {
				record[col] = values[j]
			}
		}
		decoded, err := codec.Decode(record)
		if err != nil {
			return nil, fmt.Errorf("normalize row %d: %w", i, err)
		}
		out = append(out, decoded)
	}
	return out, nil
}

func sortedKeys(set map[PartitionKey]struct{}) []PartitionKey {
	keys := make([]PartitionKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Week != keys[j].Week {
			return keys[i].Week < keys[j].Week
		}
		if keys[i].Brand != keys[j].Brand {
			return keys[i].Brand < keys[j].Brand
		}
		return keys[i].Class < keys[j].Class
	})
	return keys
}
