package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"leadgen/extractor"
	"leadgen/models"
)

var classifyFlags struct {
	input           string
	hashtagPlatform string
}

var classifyCmd = &cobra.Command{
	Use:   "classify [references...]",
	Short: "Show the platform and target each reference resolves to, without fetching",
	RunE:  runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.StringVarP(&classifyFlags.input, "input", "i", "", "File with one reference per line")
	f.StringVar(&classifyFlags.hashtagPlatform, "hashtag-platform", string(models.PlatformInstagramHashtag),
		"Platform for bare #hashtags (instagram_hashtag|linkedin_hashtag)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	refs, err := collectReferences(args, classifyFlags.input)
	if err != nil {
		return err
	}

	platform := models.Platform(classifyFlags.hashtagPlatform)
	if !platform.IsHashtag() {
		return fmt.Errorf("--hashtag-platform must be %q or %q, got %q",
			models.PlatformInstagramHashtag, models.PlatformLinkedInHashtag, platform)
	}
	classifier := extractor.NewClassifier(platform)

	out := cmd.OutOrStdout()
	for _, ref := range refs {
		c := classifier.Classify(ref)
		fmt.Fprintf(out, "%-18s %s\n", c.Platform, c.Target)
	}
	return nil
}
