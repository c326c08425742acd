package aws

import (
	"fmt"
	"strings"

	"iisctl/pkg/errors"
)

// RegionMapping maps region shortcodes to AWS region names
var RegionMapping = map[string]string{
	// Canada
	"cac1": "ca-central-1",
	"caw1": "ca-west-1",

	// United States
	"use1": "us-east-1",
	"use2": "us-east-2",
	"usw1": "us-west-1",
	"usw2": "us-west-2",

	// Europe
	"euw1": "eu-west-1",
	"euw2": "eu-west-2",
	"euw3": "eu-west-3",
	"euc1": "eu-central-1",
	"euc2": "eu-central-2",
	"eun1": "eu-north-1",
	"eus1": "eu-south-1",
	"eus2": "eu-south-2",

	// Asia Pacific
	"aps1":  "ap-south-1",
	"aps2":  "ap-south-2",
	"apse1": "ap-southeast-1",
	"apse2": "ap-southeast-2",
	"apse3": "ap-southeast-3",
	"apse4": "ap-southeast-4",
	"apne1": "ap-northeast-1",
	"apne2": "ap-northeast-2",
	"apne3": "ap-northeast-3",

	// South America
	"sae1": "sa-east-1",

	// Africa
	"afs1": "af-south-1",

	// Middle East
	"mes1": "me-south-1",
	"mec1": "me-central-1",
}

// GetRegion converts a region shortcode to an AWS region name.
// Full region names are returned as-is.
func GetRegion(regionCode string) (string, error) {
	if IsValidAWSRegion(regionCode) {
		return regionCode, nil
	}

	region, exists := RegionMapping[strings.ToLower(regionCode)]
	if !exists {
		return "", errors.NewValidationError(fmt.Sprintf("invalid region code: %s", regionCode))
	}

	return region, nil
}

// GetRegionCode returns the shortcode for an AWS region name, or the name itself if none is mapped
func GetRegionCode(awsRegion string) string {
	for code, region := range RegionMapping {
		if region == awsRegion {
			return code
		}
	}
	return awsRegion
}
