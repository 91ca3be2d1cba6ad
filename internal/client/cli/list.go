package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) List(ctx context.Context) error {
	filter, err := GetSimpleText(a.reader, "Enter name filter (empty for all)", os.Stdout)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	files, err := a.api.ListFiles(ctx, a.token, filter)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	for _, f := range files {
		fmt.Printf("%d\t%s\t%d bytes\n", f.ID, f.FileName, f.FileSize)
	}
	return nil
}

func (a *App) Info(ctx context.Context) error {
	fileID, err := a.promptFileID()
	if err != nil {
		log.Println(err.Error())
		return err
	}

	file, err := a.api.GetFileInfo(ctx, a.token, fileID)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Printf("id: %d\nname: %s\nsize: %d\nchecksum: %d\nstatus: %d\n",
		file.ID, file.FileName, file.FileSize, file.FileChecksum, file.FileStatus)
	return nil
}

func (a *App) Delete(ctx context.Context) error {
	fileID, err := a.promptFileID()
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if err := a.api.DeleteFile(ctx, a.token, fileID); err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Println("Deleted")
	return nil
}
