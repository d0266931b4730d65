// Package diagnostics collects system information for support reports.
package diagnostics

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemInfo is a point-in-time snapshot of the host the engine runs on.
type SystemInfo struct {
	OS            string  `json:"os"`
	Architecture  string  `json:"architecture"`
	Hostname      string  `json:"hostname"`
	Platform      string  `json:"platform"`
	PlatformVer   string  `json:"platform_version"`
	KernelVersion string  `json:"kernel_version"`
	UpTime        uint64  `json:"uptime_seconds"`
	NumCPU        int     `json:"num_cpu"`
	GoVersion     string  `json:"go_version"`
	MemoryTotal   uint64  `json:"memory_total"`
	MemoryUsed    uint64  `json:"memory_used"`
	MemoryUsage   float64 `json:"memory_usage_percent"`
	CPUUsage      float64 `json:"cpu_usage_percent"`
	DiskTotal     uint64  `json:"disk_total"`
	DiskUsed      uint64  `json:"disk_used"`
	DiskUsage     float64 `json:"disk_usage_percent"`
}

// Collect gathers host, memory, CPU and disk statistics. Individual probe
// failures leave their fields zeroed rather than failing the whole report.
func Collect() SystemInfo {
	info := SystemInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		NumCPU:       runtime.NumCPU(),
		GoVersion:    runtime.Version(),
	}

	if hostname, err := os.Hostname(); err == nil {
		info.Hostname = hostname
	} else {
		info.Hostname = "unknown"
	}

	if hostInfo, err := host.Info(); err == nil {
		info.Platform = hostInfo.Platform
		info.PlatformVer = hostInfo.PlatformVersion
		info.KernelVersion = hostInfo.KernelVersion
		info.UpTime = hostInfo.Uptime
	}

	if memInfo, err := mem.VirtualMemory(); err == nil {
		info.MemoryTotal = memInfo.Total
		info.MemoryUsed = memInfo.Used
		info.MemoryUsage = memInfo.UsedPercent
	}

	// Average of all cores over one second.
	if cpuPercent, err := cpu.Percent(time.Second, false); err == nil && len(cpuPercent) > 0 {
		info.CPUUsage = cpuPercent[0]
	}

	if usage, err := disk.Usage("/"); err == nil {
		info.DiskTotal = usage.Total
		info.DiskUsed = usage.Used
		info.DiskUsage = usage.UsedPercent
	}

	return info
}

// WriteReport renders info as a human-readable support report.
func WriteReport(w io.Writer, info *SystemInfo) {
	fmt.Fprintf(w, "System:   %s/%s (%s %s, kernel %s)\n",
		info.OS, info.Architecture, info.Platform, info.PlatformVer, info.KernelVersion)
	fmt.Fprintf(w, "Hostname: %s\n", info.Hostname)
	fmt.Fprintf(w, "Uptime:   %s\n", (time.Duration(info.UpTime) * time.Second).String())
	fmt.Fprintf(w, "Go:       %s, %d CPUs\n", info.GoVersion, info.NumCPU)
	fmt.Fprintf(w, "Memory:   %.1f%% used (%d / %d MB)\n",
		info.MemoryUsage, info.MemoryUsed/1024/1024, info.MemoryTotal/1024/1024)
	fmt.Fprintf(w, "CPU:      %.1f%% used\n", info.CPUUsage)
	fmt.Fprintf(w, "Disk /:   %.1f%% used (%d / %d GB)\n",
		info.DiskUsage, info.DiskUsed/1024/1024/1024, info.DiskTotal/1024/1024/1024)
}
