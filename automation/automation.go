// Package automation drives the bank's lockbox web portal with a real
// browser to pull down remittance CSV files.
package automation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
)

// StatusNoData is returned instead of a path when the portal reports no
// unretrieved remittance files.
const StatusNoData = "NO_DATA"

// DownloadRemittance logs into the lockbox portal and downloads the next
// unretrieved remittance file into saveDir. Returns the saved path, or
// StatusNoData when the portal has nothing new.
func DownloadRemittance(portalURL, userID, password, saveDir string) (string, error) {
	if _, err := os.Stat(saveDir); os.IsNotExist(err) {
		if err := os.MkdirAll(saveDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create save directory: %v", err)
		}
	}

	// Leakless(false) keeps endpoint security software from killing the
	// helper process.
	u := launcher.New().
		Headless(false).
		Leakless(false).
		MustLaunch()

	browser := rod.New().ControlURL(u).MustConnect()
	defer browser.MustClose()

	fmt.Println("Opening lockbox portal...")
	page := browser.MustPage(portalURL)
	page.MustWaitStable()

	fmt.Println("Entering credentials...")
	if err := rod.Try(func() {
		page.MustElement("[name='userid']").MustInput(userID)
	}); err != nil {
		return "", fmt.Errorf("user id field not found: %v", err)
	}
	if err := rod.Try(func() {
		page.MustElement("[name='password']").MustInput(password)
	}); err != nil {
		return "", fmt.Errorf("password field not found: %v", err)
	}

	fmt.Println("Clicking login...")
	loginBtn, err := page.ElementR("input, button, a", "Log ?in|Sign ?in")
	if err == nil {
		loginBtn.MustClick()
	} else {
		page.KeyActions().Press(input.Enter).MustDo()
	}
	page.MustWaitStable()

	fmt.Println("Navigating to lockbox reports...")
	if err := rod.Try(func() {
		page.MustElementR("a, span, div", "Lockbox").MustClick()
	}); err != nil {
		return "", fmt.Errorf("lockbox menu not found (login may have failed): %v", err)
	}
	page.MustWaitStable()

	fmt.Println("Opening remittance download page...")
	if err := rod.Try(func() {
		page.MustElement("a[href*='RemittanceDownload']").MustClick()
	}); err != nil {
		return "", fmt.Errorf("remittance download link not found: %v", err)
	}
	page.MustWaitStable()

	wait := browser.MustWaitDownload()

	// Auto-accept any confirmation dialog.
	go page.MustHandleDialog()

	fmt.Println("Requesting unretrieved files...")
	clicked := false
	selectors := []string{
		"input[value*='Unretrieved']",
		"input[type='button']",
		"button",
	}
	for _, sel := range selectors {
		if el, err := page.ElementR(sel, "Unretrieved|Download"); err == nil {
			el.MustClick()
			clicked = true
			break
		}
	}
	if !clicked {
		return "", fmt.Errorf("download button not found")
	}

	// Race the download against the portal's "nothing to retrieve"
	// message appearing on the page.
	fmt.Println("Waiting for download...")

	var fileData []byte
	resultChan := make(chan string)

	go func() {
		defer func() {
			_ = recover()
		}()
		data := wait()
		fileData = data
		resultChan <- "downloaded"
	}()

	go func() {
		for i := 0; i < 60; i++ {
			time.Sleep(500 * time.Millisecond)
			if body, err := page.Element("body"); err == nil {
				text, _ := body.Text()
				if strings.Contains(text, "No unretrieved files") {
					resultChan <- "no_data"
					return
				}
			}
		}
	}()

	select {
	case res := <-resultChan:
		if res == "no_data" {
			return StatusNoData, nil
		}
	case <-time.After(60 * time.Second):
		return "", fmt.Errorf("timed out waiting for the download or a portal message")
	}

	if len(fileData) == 0 {
		return "", fmt.Errorf("downloaded file is empty")
	}

	fileName := fmt.Sprintf("lockbox_%s.csv", time.Now().Format("20060102150405"))
	destPath := filepath.Join(saveDir, fileName)
	if err := os.WriteFile(destPath, fileData, 0644); err != nil {
		return "", fmt.Errorf("failed to write downloaded file: %v", err)
	}

	fmt.Printf("Download complete: %s\n", destPath)
	return destPath, nil
}
