package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ExportFormat représente le format d'export
type ExportFormat string

const (
	ExportFormatCSV     ExportFormat = "CSV"
	ExportFormatParquet ExportFormat = "Parquet"
)

// ParseExportFormat accepte "csv" ou "parquet", sans tenir compte de la casse
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "csv":
		return ExportFormatCSV, nil
	case "parquet":
		return ExportFormatParquet, nil
	}
	return "", fmt.Errorf("invalid export format %q", raw)
}

// ExportType représente le jeu de données exporté
type ExportType string

// ParseExportType accepte "sales" ou "weekly_fact"
func ParseExportType(raw string) (ExportType, error) {
	switch t := ExportType(strings.ToLower(strings.TrimSpace(raw))); t {
	case ExportTypeSales, ExportTypeWeeklyFact:
		return t, nil
	}
	return "", fmt.Errorf("invalid export type %q", raw)
}

const (
	ExportTypeSales      ExportType = "sales"
	ExportTypeWeeklyFact ExportType = "weekly_fact"
)

// ExportJob représente un job d'export d'un snapshot vers un fichier
type ExportJob struct {
	format     ExportFormat
	exportType ExportType
	target     string
	createdAt  time.Time
}

// NewExportJob crée un nouveau job d'export avec validation
func NewExportJob(format ExportFormat, exportType ExportType, target string) (*ExportJob, error) {
	if format != ExportFormatCSV && format != ExportFormatParquet {
		return nil, errors.New("invalid export format")
	}
	if exportType != ExportTypeSales && exportType != ExportTypeWeeklyFact {
		return nil, errors.New("invalid export type")
	}
	if format == ExportFormatParquet && exportType != ExportTypeWeeklyFact {
		return nil, fmt.Errorf("parquet export is only available for %s", ExportTypeWeeklyFact)
	}
	if strings.TrimSpace(target) == "" {
		return nil, errors.New("export target cannot be empty")
	}

	return &ExportJob{
		format:     format,
		exportType: exportType,
		target:     target,
		createdAt:  time.Now(),
	}, nil
}

// Format retourne le format d'export
func (ej *ExportJob) Format() ExportFormat {
	return ej.format
}

// ExportType retourne le jeu de données exporté
func (ej *ExportJob) ExportType() ExportType {
	return ej.exportType
}

// Target retourne le chemin du fichier produit
func (ej *ExportJob) Target() string {
	return ej.target
}

// CreatedAt retourne la date de création
func (ej *ExportJob) CreatedAt() time.Time {
	return ej.createdAt
}
