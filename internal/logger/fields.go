package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldCandidateID   = "candidate_id"
	FieldCandidateKind = "candidate_kind"
	FieldCandidateName = "candidate_name"
	FieldProvider      = "ai_provider"
	FieldModel         = "ai_model"
)

// CandidateFields describes a candidate in log entries, skipping blank values.
func CandidateFields(id, kind, name string) []zap.Field {
	return compact(
		[2]string{FieldCandidateID, id},
		[2]string{FieldCandidateKind, kind},
		[2]string{FieldCandidateName, name},
	)
}

// AIFields describes the provider and model behind an AI call.
func AIFields(provider, model string) []zap.Field {
	return compact(
		[2]string{FieldProvider, provider},
		[2]string{FieldModel, model},
	)
}

func compact(pairs ...[2]string) []zap.Field {
	fields := make([]zap.Field, 0, len(pairs))
	for _, p := range pairs {
		value := strings.TrimSpace(p[1])
		if value == "" {
			continue
		}
		fields = append(fields, zap.String(p[0], value))
	}
	return fields
}
