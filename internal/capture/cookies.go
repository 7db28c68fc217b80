package capture

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

// Cookie is a single entry parsed from a Netscape cookies.txt file
type Cookie struct {
	Domain string
	Path   string
	Secure bool
	Name   string
	Value  string
}

// ParseCookiesFile reads a Netscape/Mozilla format cookies.txt file.
// Malformed lines are skipped.
func ParseCookiesFile(path string) ([]Cookie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open cookies file")
	}
	defer f.Close()

	var cookies []Cookie
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			continue
		}
		cookies = append(cookies, Cookie{
			Domain: fields[0],
			Path:   fields[2],
			Secure: strings.EqualFold(fields[3], "true"),
			Name:   fields[5],
			Value:  fields[6],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read cookies file")
	}
	return cookies, nil
}

// loadCookiesTask builds a chromedp action that installs all cookies from
// the file into the browser context.
func loadCookiesTask(path string) (chromedp.Action, error) {
	cookies, err := ParseCookiesFile(path)
	if err != nil {
		return nil, err
	}
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			err := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithSecure(c.Secure).
				Do(ctx)
			if err != nil {
				return errors.Wrapf(err, "failed to set cookie %s", c.Name)
			}
		}
		return nil
	}), nil
}
