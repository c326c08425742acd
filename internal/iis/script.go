// Package iis holds the PowerShell payload that resets IIS on a Windows instance.
package iis

import "strings"

// DocumentName is the SSM document that runs PowerShell on Windows instances
const DocumentName = "AWS-RunPowerShellScript"

// restartScript restarts or starts every application pool, then bounces every website.
// Pools in the Stopped state are started; all other pools are restarted.
const restartScript = `
Import-Module WebAdministration

$appPools = Get-ChildItem IIS:\AppPools
foreach ($pool in $appPools) {
    $state = (Get-WebAppPoolState -Name $pool.Name).Value
    if ($state -eq "Stopped") {
        Start-WebAppPool -Name $pool.Name
    } else {
        Restart-WebAppPool -Name $pool.Name
    }
}

$websites = Get-Website
foreach ($site in $websites) {
    Stop-Website -Name $site.Name
    Start-Website -Name $site.Name
}

Write-Host "IIS services have been reset."
Write-Host "Web Application Pools:", (
    $appPools | ForEach-Object {
        "$($_.Name) - $((Get-WebAppPoolState -Name $_.Name).Value)"
    }
)
Write-Host "Websites:", (
    $websites | ForEach-Object {
        "$($_.Name) - $($_.State)"
    }
)
`

// RestartScript returns the IIS reset payload sent as the document's commands parameter
func RestartScript() string {
	return strings.TrimLeft(restartScript, "\n")
}

// Commands returns the payload in the shape the commands parameter expects
func Commands(script string) []string {
	if strings.TrimSpace(script) == "" {
		script = RestartScript()
	}
	return []string{script}
}
