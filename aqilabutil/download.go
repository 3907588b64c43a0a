/*
Copyright © 2024 the AQILab authors.
This file is part of AQILab.

AQILab is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

AQILab is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with AQILab.  If not, see <http://www.gnu.org/licenses/>.
*/

package aqilabutil

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// maxDownloadRetries is the number of times a failed download is retried.
const maxDownloadRetries = 3

// newBackOff returns the retry policy for downloads.
var newBackOff = func() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxDownloadRetries)
}

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL.
// If it's a URL, it downloads the file and
// returns the path to the downloaded file.
// If the download fails, the error is logged and the
// original path is returned.
func maybeDownload(p string) string {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		return p
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		f, err := downloadHTTP(p)
		if err != nil {
			logrus.WithError(err).WithField("url", p).Error("download failed")
			return p
		}
		return f
	}
	return p
}

// downloadHTTP downloads a file from the specified URL into a temporary
// directory and returns the path to the downloaded file. Network errors
// and server errors are retried.
func downloadHTTP(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("aqilabutil: parsing download URL: %v", err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = "download"
	}
	dir, err := os.MkdirTemp("", "aqilab")
	if err != nil {
		return "", fmt.Errorf("aqilabutil: failed creating temporary download directory: %v", err)
	}
	fname := filepath.Join(dir, name)

	var permanent error
	err = backoff.RetryNotify(
		func() error {
			resp, err := http.Get(rawURL)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 500 {
				return fmt.Errorf("aqilabutil: downloading %s: %s", rawURL, resp.Status)
			}
			if resp.StatusCode != http.StatusOK {
				permanent = fmt.Errorf("aqilabutil: downloading %s: %s", rawURL, resp.Status)
				return nil
			}
			w, err := os.Create(fname)
			if err != nil {
				permanent = fmt.Errorf("aqilabutil: failed creating file for download: %v", err)
				return nil
			}
			if _, err = io.Copy(w, resp.Body); err != nil {
				w.Close()
				return err
			}
			return w.Close()
		},
		newBackOff(),
		func(err error, d time.Duration) {
			logrus.WithError(err).Warnf("download failed: retrying in %v", d)
		},
	)
	if err != nil {
		return "", err
	}
	if permanent != nil {
		return "", permanent
	}
	return fname, nil
}
