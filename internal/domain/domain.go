package domain

import (
	"github.com/tickhubhq/tickhub-backend/internal/domain/linking"
	"github.com/tickhubhq/tickhub-backend/internal/domain/syncing"
	"github.com/tickhubhq/tickhub-backend/internal/domain/tickets"
)

const (
	SourceZendesk    = tickets.SourceZendesk
	SourceJira       = tickets.SourceJira
	SourceSlack      = tickets.SourceSlack
	SourceGithub     = tickets.SourceGithub
	SourceSalesforce = tickets.SourceSalesforce
	SourceTeams      = tickets.SourceTeams

	StatusSolved = tickets.StatusSolved
	StatusClosed = tickets.StatusClosed

	CFPreviousStatus   = tickets.CFPreviousStatus
	CFAutoSolvedAt     = tickets.CFAutoSolvedAt
	CFAutoSolvedReason = tickets.CFAutoSolvedReason

	TransformExtractJiraKey = linking.TransformExtractJiraKey
	TransformRegexExtract   = linking.TransformRegexExtract
	TransformURLPathExtract = linking.TransformURLPathExtract
	TransformSubstring      = linking.TransformSubstring
	TransformSplitExtract   = linking.TransformSplitExtract

	LinkTypeFieldMapping = linking.LinkTypeFieldMapping

	SyncStatusSuccess = syncing.SyncStatusSuccess
	SyncStatusError   = syncing.SyncStatusError
)

type Record = tickets.Record
type CustomColumn = tickets.CustomColumn
type FieldMapping = linking.FieldMapping
type RecordLink = linking.RecordLink
type Integration = syncing.Integration
type SyncLog = syncing.SyncLog
