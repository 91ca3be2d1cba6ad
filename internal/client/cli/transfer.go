package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
)

func (a *App) Upload(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "Enter file path", os.Stdout)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fileID, err := a.transfer.Upload(ctx, a.token, path)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Uploaded, file id %d\n", fileID)
	return nil
}

func (a *App) Download(ctx context.Context) error {
	fileID, err := a.promptFileID()
	if err != nil {
		log.Println(err.Error())
		return err
	}
	dest, err := GetSimpleText(a.reader, "Enter destination path", os.Stdout)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if err := a.transfer.Download(ctx, a.token, fileID, dest); err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("Downloaded to %s\n", dest)
	return nil
}

func (a *App) promptFileID() (int64, error) {
	text, err := GetSimpleText(a.reader, "Enter file id", os.Stdout)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad file id %q: %w", text, err)
	}
	return id, nil
}
