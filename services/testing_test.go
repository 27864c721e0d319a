package services

import (
	"fmt"
	"testing"

	"bounty-board-system/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// One connection, one in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Bounty{}, &models.Submission{}))
	return db
}

// testBountyID builds a distinct bytes32 hex identifier.
func testBountyID(n int) string {
	return fmt.Sprintf("0x%064x", n)
}

// testAddress builds a distinct address hex string.
func testAddress(n int) string {
	return fmt.Sprintf("0x%040x", n)
}

func validInput(n int) CreateBountyInput {
	return CreateBountyInput{
		ID:             testBountyID(n),
		Title:          fmt.Sprintf("Bounty %d", n),
		Description:    "Summarize the attached report in three paragraphs.",
		CreatorAddress: testAddress(1000 + n),
		Amount:         "2000000000000000000",
	}
}
