package storage

// Model source resolution.
// Uses hashicorp/go-getter so a model can be read from:
//   - Local paths
//   - HTTP(S) URLs
//   - Git, S3 and GCS sources (e.g. git::https://host/repo.git//model.yaml)

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-getter"
	"go.uber.org/zap"

	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/internal/httpclient"
)

// DefaultFetchTimeout bounds a single HTTP model download
const DefaultFetchTimeout = 60 * time.Second

// FetchOptions controls how remote models are downloaded.
type FetchOptions struct {
	Timeout time.Duration
	// AllowPrivateHosts permits HTTP sources on loopback or private
	// networks. Off by default.
	AllowPrivateHosts bool
}

// Source is a model source resolved to a local file.
type Source struct {
	// LocalPath is the file to read: the input itself or a fetched copy.
	LocalPath string
	// OriginalInput is the path or URL as given.
	OriginalInput string
	// IsRemote indicates the file was fetched.
	IsRemote bool
	cleanup  func()
}

// Cleanup removes any temporary files created for this source.
// Safe to call multiple times.
func (s *Source) Cleanup() {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// ResolveSource turns input into a readable local file, fetching it when it
// is remote. The returned Source must be cleaned up.
func ResolveSource(ctx context.Context, input string, opts FetchOptions, log *zap.SugaredLogger) (*Source, error) {
	if input == "" {
		return nil, errors.New("no model source given")
	}
	if strings.HasPrefix(input, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to expand home directory")
		}
		input = filepath.Join(home, input[2:])
	}
	pwd, err := os.Getwd()
	if err != nil {
		pwd = "."
	}

	detected, err := getter.Detect(input, pwd, getter.Detectors)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to detect source type of %s", input)
	}
	log.Debugw("go-getter detected source", "input", input, "detected", detected)

	parsed, err := url.Parse(detected)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse detected URL %s", detected)
	}

	if parsed.Scheme == "file" || parsed.Scheme == "" {
		localPath := input
		if parsed.Scheme == "file" {
			localPath = parsed.Path
		}
		info, err := os.Stat(localPath)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read %s", localPath)
		}
		if info.IsDir() {
			return nil, errors.Newf("%s is a directory, expected a model file", localPath)
		}
		return &Source{LocalPath: localPath, OriginalInput: input, cleanup: func() {}}, nil
	}

	return fetchSource(ctx, input, detected, parsed, opts, log)
}

func fetchSource(ctx context.Context, input, detected string, parsed *url.URL, opts FetchOptions, log *zap.SugaredLogger) (*Source, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	httpClient := httpclient.New(httpclient.Options{
		Timeout:      timeout,
		AllowPrivate: opts.AllowPrivateHosts,
	})
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		if _, err := httpClient.ValidateURL(detected); err != nil {
			return nil, errors.WithHint(
				errors.Wrapf(err, "refusing to fetch %s", input),
				"set source.allow_private_hosts = true to fetch models from private networks")
		}
	}
	httpGetter := &getter.HttpGetter{Netrc: true, Client: httpClient.Client}
	getters := make(map[string]getter.Getter, len(getter.Getters))
	for scheme, g := range getter.Getters {
		getters[scheme] = g
	}
	getters["http"] = httpGetter
	getters["https"] = httpGetter

	tempDir, err := os.MkdirTemp("", "mmgen-source-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp directory")
	}

	dst := filepath.Join(tempDir, remoteFileName(input))
	client := &getter.Client{
		Ctx:     ctx,
		Src:     detected,
		Dst:     dst,
		Pwd:     tempDir,
		Mode:    getter.ClientModeFile,
		Getters: getters,
	}

	log.Infow("Fetching model", "input", input, "destination", dst)
	if err := client.Get(); err != nil {
		os.RemoveAll(tempDir)
		return nil, errors.Wrapf(err, "failed to fetch %s", input)
	}

	return &Source{
		LocalPath:     dst,
		OriginalInput: input,
		IsRemote:      true,
		cleanup: func() {
			log.Debugw("Cleaning up fetched model", "path", tempDir)
			os.RemoveAll(tempDir)
		},
	}, nil
}

// remoteFileName keeps the extension of a remote source so that its format
// can still be detected.
func remoteFileName(input string) string {
	p := input
	if i := strings.Index(p, "::"); i >= 0 {
		p = p[i+2:]
	}
	if u, err := url.Parse(p); err == nil && u.Path != "" {
		p = u.Path
	}
	// go-getter subdirectory syntax: repo//path/in/repo
	if i := strings.LastIndex(p, "//"); i >= 0 {
		p = p[i+2:]
	}
	name := path.Base(p)
	if name == "." || name == "/" || name == "" {
		return "model"
	}
	return name
}

// IsRemote reports whether input would be fetched rather than read locally.
func IsRemote(input string) bool {
	pwd, err := os.Getwd()
	if err != nil {
		pwd = "."
	}
	detected, err := getter.Detect(input, pwd, getter.Detectors)
	if err != nil {
		return false
	}
	parsed, err := url.Parse(detected)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Scheme != "file"
}
