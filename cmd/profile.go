package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"habitvault/internal/models"
	"habitvault/internal/shared"
)

// ProfileSet saves a credential pair to the store.
func (r *Runner) ProfileSet(ctx context.Context, cmd *cli.Command) error {
	creds := models.Credentials{
		UserID:   strings.TrimSpace(cmd.String("user-id")),
		APIToken: strings.TrimSpace(cmd.String("token")),
	}
	if !creds.Valid() {
		return fmt.Errorf("%w: both --user-id and --token must be non-empty", shared.ErrInvalidInput)
	}

	data, err := shared.MarshalJSON(creds, false)
	if err != nil {
		return err
	}
	if err := r.store.Set(models.CredentialsKey, string(data)); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	r.logger.Info("credentials saved", "user_id", creds.UserID)
	r.writePlain("✓ Credentials saved for user %s\n", creds.UserID)
	return nil
}

// ProfileShow prints the active credentials with the token masked.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	creds, err := r.credentials()
	if err != nil {
		return err
	}

	r.writePlain("User ID: %s\n", creds.UserID)
	r.writePlain("API token: %s\n", maskToken(creds.APIToken))
	return nil
}

// ProfileVerify checks the active credentials against the live service.
func (r *Runner) ProfileVerify(ctx context.Context, cmd *cli.Command) error {
	creds, err := r.credentials()
	if err != nil {
		return err
	}

	r.logger.Info("verifying credentials", "user_id", creds.UserID)

	name, err := r.gateway.FetchProfileName(ctx, creds)
	if err != nil {
		return err
	}

	r.writePlain("✓ Credentials valid for account: %s\n", name)
	return nil
}

// ProfileClear removes the stored credential pair.
func (r *Runner) ProfileClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.store.Delete(models.CredentialsKey); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	r.writePlain("✓ Stored credentials removed\n")
	return nil
}

// maskToken hides all but the first four characters of a token.
func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-4)
}
