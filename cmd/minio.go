package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/duythanhle/live-beats/config"
	"github.com/duythanhle/live-beats/storage"
)

var minioPrefix string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the MinIO audio bucket",
	Long:  `Verify the MinIO connection and list stored audio objects, optionally filtered by prefix.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}

		keys, err := storage.ListObjects(context.Background(), minioPrefix)
		if err != nil {
			log.Fatalf("Failed to list objects: %v", err)
		}

		for _, key := range keys {
			fmt.Println(key)
		}
		fmt.Printf("%d objects.\n", len(keys))
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "filter objects by prefix, e.g. audio/7/")
}
