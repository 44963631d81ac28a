package main

import (
	"os"

	"sftpfetchapi/cmd"
)

// @title           sftpfetchapi
// @version         1.0
// @description     SFTP file retrieval microservice

// @BasePath  /

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
