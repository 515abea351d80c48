// Package clientcli drives the b2-cli commands against a B2 compatible service.
//
// It wraps the b2files client with lazy authorization, recursive uploads and
// output formatting. Connections are described by profiles kept in
// ~/.b2files/config.yaml, with B2_* environment variables and flags layered on top.
//
// # Basic Usage
//
//	cfg := &clientcli.Config{
//		Endpoint: "http://localhost:5709",
//		KeyID:    "your-key-id",
//		Key:      "your-application-key",
//		BucketID: "your-bucket-id",
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath:  "./file.txt",
//		RemotePath: "documents/file.txt",
//	})
//
// # Profiles
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatList(os.Stdout, result)
package clientcli
