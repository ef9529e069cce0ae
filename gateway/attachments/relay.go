package attachments

import (
	"context"

	"github.com/netgfx/slack-jira-automation/common/log"
	"github.com/netgfx/slack-jira-automation/gateway/jira"
	"github.com/netgfx/slack-jira-automation/gateway/qaform"
	"github.com/pkg/errors"
)

type Downloader interface {
	DownloadFile(ctx context.Context, fileURL string) ([]byte, error)
}

type Uploader interface {
	AttachFile(ctx context.Context, issueKey string, data []byte, fileName, contentType string) ([]jira.Attachment, error)
}

// Result is the outcome of relaying a single file
type Result struct {
	FileID   string
	FileName string
	Success  bool
	Data     []jira.Attachment
	Error    string
}

// Relay copies files uploaded in Slack to a Jira issue
type Relay struct {
	downloader Downloader
	uploader   Uploader
}

func New(downloader Downloader, uploader Uploader) *Relay {
	return &Relay{downloader: downloader, uploader: uploader}
}

// Process downloads and attaches each file to the issue, one at a time.
// A failure is recorded in the result of the file and the next file is processed,
// it never returns an error.
func (r *Relay) Process(ctx context.Context, issueKey string, files []qaform.File) []Result {
	results := []Result{}
	if len(files) == 0 {
		log.Debugf("no files to attach to %v", issueKey)
		return results
	}
	log.Infof("processing %v file(s) for attachment to %v", len(files), issueKey)
	for _, file := range files {
		result := Result{FileID: file.ID, FileName: file.Name}
		data, err := r.relay(ctx, issueKey, file)
		if err != nil {
			log.Warnf("failed attaching file %v (%v) to %v, reason=%v", file.Name, file.ID, issueKey, err)
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		log.Infof("successfully attached %v to jira issue %v", file.Name, issueKey)
		result.Success = true
		result.Data = data
		results = append(results, result)
	}
	return results
}

func (r *Relay) relay(ctx context.Context, issueKey string, file qaform.File) ([]jira.Attachment, error) {
	if file.DownloadURL == "" {
		return nil, errors.New("file has no download url")
	}
	data, err := r.downloader.DownloadFile(ctx, file.DownloadURL)
	if err != nil {
		return nil, errors.Wrap(err, "download")
	}
	attachments, err := r.uploader.AttachFile(ctx, issueKey, data, file.Name, file.MimeType)
	if err != nil {
		return nil, errors.Wrap(err, "upload")
	}
	return attachments, nil
}
