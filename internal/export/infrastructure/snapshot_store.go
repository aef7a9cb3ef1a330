package infrastructure

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"weekly/internal/export/domain"
	sharedinfra "weekly/internal/shared/infrastructure"
)

// flushEvery nombre de lignes entre deux flush du writer CSV
const flushEvery = 1000

// SnapshotStore lit et remplace un snapshot CSV décrit par un Codec
type SnapshotStore[T any] struct {
	path   string
	codec  domain.Codec[T]
	logger *zap.Logger
}

// NewSnapshotStore crée un store pour le fichier path
func NewSnapshotStore[T any](path string, codec domain.Codec[T], logger *zap.Logger) *SnapshotStore[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotStore[T]{path: path, codec: codec, logger: logger}
}

// Path retourne le chemin du snapshot
func (s *SnapshotStore[T]) Path() string {
	return s.path
}

// Codec retourne la forme des lignes
func (s *SnapshotStore[T]) Codec() domain.Codec[T] {
	return s.codec
}

// Load relit le snapshot; un fichier absent donne un historique vide
// Les lignes illisibles sont écartées et comptées dans dropped
func (s *SnapshotStore[T]) Load() (rows []T, dropped int, err error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open snapshot %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read snapshot header %s: %w", s.path, err)
	}

	line := 1
	for {
		values, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			dropped++
			s.logger.Warn("snapshot row unreadable", zap.String("path", s.path), zap.Int("line", line), zap.Error(err))
			continue
		}
		record := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(values) {
				record[col] = values[i]
			}
		}
		row, err := s.codec.Decode(record)
		if err != nil {
			dropped++
			s.logger.Warn("snapshot row dropped", zap.String("path", s.path), zap.Int("line", line), zap.Error(err))
			continue
		}
		rows = append(rows, row)
	}
	return rows, dropped, nil
}

// Save remplace le snapshot par rows (fichier temporaire + rename)
func (s *SnapshotStore[T]) Save(rows []T) error {
	return sharedinfra.WriteFileAtomic(s.path, func(w io.Writer) error {
		return s.Encode(w, rows)
	})
}

// Encode écrit rows au format CSV, en-tête compris
func (s *SnapshotStore[T]) Encode(w io.Writer, rows []T) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(s.codec.Header()); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writer.Write(s.codec.Encode(row)); err != nil {
			return err
		}
		if (i+1)%flushEvery == 0 {
			writer.Flush()
		}
	}
	writer.Flush()
	return writer.Error()
}

// MergeAndSave fusionne incoming dans l'historique et remplace le fichier
// Le fichier n'est pas réécrit si aucune partition n'est ajoutée ni remplacée
func (s *SnapshotStore[T]) MergeAndSave(incoming []T, mode domain.MergeMode) (domain.MergeResult[T], int, error) {
	existing, dropped, err := s.Load()
	if err != nil {
		return domain.MergeResult[T]{}, 0, err
	}
	res := domain.Merge(s.codec, existing, incoming, mode)
	if len(res.Added) == 0 && len(res.Replaced) == 0 && dropped == 0 && fileExists(s.path) {
		return res, dropped, nil
	}
	if err := s.Save(res.Rows); err != nil {
		return res, dropped, err
	}
	return res, dropped, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
