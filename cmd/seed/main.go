package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/tagcord/tagcord-backend/config"
	"github.com/tagcord/tagcord-backend/internal/app/model"
	"github.com/tagcord/tagcord-backend/internal/app/repository"
	"github.com/tagcord/tagcord-backend/internal/app/service"
	"github.com/tagcord/tagcord-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Imports tags from an xlsx sheet. Expected columns:
// tag_name | icon_id | invite_url | description | categories (comma separated) | owner_discord_id | owner_username
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	tagRepo := repository.NewTagRepository(db.GetDB())
	profileRepo := repository.NewProfileRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	tags, err := readTagsFromXLSX(filePath, profileRepo)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total tags to import: %d\n", len(tags))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := tagRepo.BulkCreate(tags, batchSize); err != nil {
		log.Fatal("Failed to bulk create tags:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total tags imported: %d\n", len(tags))
}

func readTagsFromXLSX(filePath string, profileRepo repository.ProfileRepository) ([]model.Tag, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows found in XLSX file")
	}

	var tags []model.Tag
	seenNames := make(map[string]bool)
	ownerCache := make(map[string]string) // discord_id -> profile_id
	skippedCount := 0

	for i, row := range rows[1:] {
		rowNum := i + 2

		if len(row) < 7 {
			fmt.Printf("Row %d: too few columns, skipping\n", rowNum)
			skippedCount++
			continue
		}

		input := service.TagInput{
			TagName:     cell(row, 0),
			InviteURL:   cell(row, 2),
			Description: cell(row, 3),
			Categories:  splitList(cell(row, 4)),
		}
		input.IconID, _ = strconv.Atoi(cell(row, 1))

		validated, fieldErrors := service.ValidateTagInput(input)
		if fieldErrors != nil {
			fmt.Printf("Row %d: invalid tag (%v), skipping\n", rowNum, fieldErrors)
			skippedCount++
			continue
		}

		if seenNames[validated.TagName] {
			fmt.Printf("Row %d: duplicate tag name %s, skipping\n", rowNum, validated.TagName)
			skippedCount++
			continue
		}
		seenNames[validated.TagName] = true

		discordID := cell(row, 5)
		username := cell(row, 6)
		ownerID, err := resolveOwner(profileRepo, ownerCache, discordID, username)
		if err != nil {
			fmt.Printf("Row %d: could not resolve owner %s (%v), skipping\n", rowNum, discordID, err)
			skippedCount++
			continue
		}

		tag := model.Tag{
			TagName:       validated.TagName,
			IconID:        validated.IconID,
			Categories:    pq.StringArray(validated.Categories),
			OwnerID:       ownerID,
			OwnerUsername: username,
		}
		inviteURL := validated.InviteURL
		tag.InviteURL = &inviteURL
		if validated.Description != "" {
			description := validated.Description
			tag.Description = &description
		}

		tags = append(tags, tag)
	}

	fmt.Printf("Parsed %d tags (%d rows skipped)\n", len(tags), skippedCount)
	return tags, nil
}

// resolveOwner finds or creates the profile a seeded tag belongs to.
func resolveOwner(profileRepo repository.ProfileRepository, cache map[string]string, discordID, username string) (string, error) {
	if discordID == "" {
		return "", fmt.Errorf("missing owner discord id")
	}
	if id, ok := cache[discordID]; ok {
		return id, nil
	}

	profile, err := profileRepo.FindByDiscordID(discordID)
	if err == nil {
		cache[discordID] = profile.ID
		return profile.ID, nil
	}

	profile = &model.Profile{DiscordID: discordID, Username: username}
	if err := profileRepo.Create(profile); err != nil {
		return "", err
	}
	cache[discordID] = profile.ID
	return profile.ID, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
