package hubsdk

import (
	"context"
	"fmt"
	"net/url"
	"os"
)

const (
	loginPath          = "/newLogin"
	backupsPath        = "/api/backups"
	downloadBackupPath = "/api/downloadBackup/"
)

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Login authenticates against the diagnostic service by posting the
// normalized MAC address. On success the hub hands back a session cookie
// which the client carries into every subsequent request.
func (s *HubSDK) Login(ctx context.Context) error {
	result := &loginResponse{}
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(s.config.MAC).
		SetSuccessResult(result).
		Post(loginPath)
	if err != nil {
		return fmt.Errorf("hub login: %w", err)
	}
	if resp.IsErrorState() {
		return hubError("login", resp)
	}
	if !result.Success {
		if result.Message != "" {
			return fmt.Errorf("%w: %s", ErrLoginFailed, result.Message)
		}
		return ErrLoginFailed
	}
	return nil
}

// ListBackups fetches the backup listing page and returns the raw body.
// The hub serves it as HTML; picking filenames out of it is the caller's
// concern.
func (s *HubSDK) ListBackups(ctx context.Context) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(backupsPath)
	if err != nil {
		return nil, fmt.Errorf("hub listing: %w", err)
	}
	if resp.IsErrorState() {
		return nil, hubError("listing", resp)
	}
	return resp.Bytes(), nil
}

// DownloadBackup streams one backup file into destPath and returns its size.
// The response body lands in destPath even when the hub answers with an
// error page, so on any failure the partial file is removed before
// returning; destPath exists only after a successful download.
func (s *HubSDK) DownloadBackup(ctx context.Context, name, destPath string) (int64, error) {
	resp, err := s.client.R().
		DisableAutoReadResponse().
		SetContext(ctx).
		SetOutputFile(destPath).
		Get(downloadBackupPath + url.PathEscape(name))
	if err != nil {
		_ = os.Remove(destPath)
		return 0, fmt.Errorf("hub download %s: %w", name, err)
	}
	if resp.IsErrorState() {
		_ = os.Remove(destPath)
		return 0, hubError("download "+name, resp)
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return 0, fmt.Errorf("hub download %s: %w", name, err)
	}
	return info.Size(), nil
}
