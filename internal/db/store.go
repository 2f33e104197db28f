// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"github.com/toeirei/ringmaster/internal/model"
)

// Store defines the interface for all database operations in Ringmaster.
// This allows for multiple database backends to be implemented.
type Store interface {
	// Site methods
	ListSites() ([]model.Site, error)
	GetSite(id string) (*model.Site, error)
	InsertSite(site model.Site) error
	NextSitePosition() (int, error)
	UpdateSiteOrder(id string, position int) error
	ReorderSites(ids []string) error
	DeleteSite(id string) error

	// Submission methods
	InsertSubmission(ip, domain, name, url string) (int, error)
	GetSubmission(id int) (*model.Submission, error)
	HasPendingSubmission(ip string) (bool, error)
	ListPendingSubmissions() ([]model.Submission, error)
	ApproveSubmission(id int) (*model.Site, error)
	DenySubmission(id int) error

	// Counter methods
	IncrementVisit(siteID string) error
	IncrementReferral(siteID, referrerID string) error
	GetVisitTotal(siteID string) (int, error)
	GetReferrals(siteID string) ([]model.ReferralCount, error)

	// Backup methods
	ExportDataForBackup() (*model.BackupData, error)
	ImportDataFromBackup(backup *model.BackupData) error
}
