package dfxml

import (
	"encoding/xml"
	"os"
	"os/user"
	"runtime"
	"strconv"
	"time"

	"github.com/ostafen/partview/pkg/sysinfo"
	"github.com/spf13/afero"
)

const XmlOutputVersion = "1.0"

var DefaultMetadata = Metadata{
	Xmlns:    "http://www.forensicswiki.org/wiki/Category:Digital_Forensics_XML",
	XmlnsXsi: "http://www.w3.org/2001/XMLSchema-instance",
	XmlnsDC:  "http://purl.org/dc/elements/1.1/",
	Type:     "Partition Report",
}

// DFXMLHeader represents the root element of a DFXML document.
type DFXMLHeader struct {
	XMLName   xml.Name `xml:"dfxml"`
	XmlOutput string   `xml:"xmloutputversion,attr,omitempty"`
	Metadata  Metadata `xml:"metadata"`
	Creator   Creator  `xml:"creator"`
	Source    Source   `xml:"source"`
}

// Metadata contains the namespaces and document type.
type Metadata struct {
	Xmlns    string `xml:"xmlns,attr"`
	XmlnsXsi string `xml:"xmlns:xsi,attr"`
	XmlnsDC  string `xml:"xmlns:dc,attr"`
	Type     string `xml:"dc:type"`
}

// Creator describes the software and environment used to generate the DFXML.
type Creator struct {
	Package              string  `xml:"package"`
	Version              string  `xml:"version"`
	ExecutionEnvironment ExecEnv `xml:"execution_environment"`
}

// ExecEnv provides information about the host where the DFXML was created.
type ExecEnv struct {
	OS      string `xml:"os_sysname"`
	Release string `xml:"os_release"`
	Version string `xml:"os_version"`
	Host    string `xml:"host"`
	Arch    string `xml:"arch"`
	UID     int    `xml:"uid"`
	Start   string `xml:"start_time"`
}

// Source describes the analyzed image.
type Source struct {
	ImageFilename string       `xml:"image_filename"`
	SectorSize    int          `xml:"sectorsize"`
	ImageSize     uint64       `xml:"image_size"`
	PartitionType string       `xml:"partition_scheme,omitempty"`
	DiskGUID      string       `xml:"disk_guid,omitempty"`
	Hashes        []HashDigest `xml:"hashdigest,omitempty"`
}

// HashDigest is a digest of the whole image.
type HashDigest struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// Volume is a single partition of the image.
type Volume struct {
	XMLName         xml.Name `xml:"volume"`
	Offset          uint64   `xml:"offset,attr"`
	PartitionIndex  int      `xml:"partition_index"`
	PartitionOffset uint64   `xml:"partition_offset"`
	BlockSize       uint32   `xml:"block_size"`
	BlockCount      uint64   `xml:"block_count"`
	FTypeStr        string   `xml:"ftype_str"`
	TypeCode        string   `xml:"partition_type"`
	PartitionName   string   `xml:"partition_name,omitempty"`
	UniqueGUID      string   `xml:"partition_guid,omitempty"`
	Bootable        bool     `xml:"bootable"`
	ByteRuns        ByteRuns `xml:"byte_runs"`
}

// ByteRuns is a collection of ByteRun entries.
type ByteRuns struct {
	Runs []ByteRun `xml:"byte_run"`
}

// ByteRun describes a contiguous block of data within the image.
type ByteRun struct {
	Offset    uint64 `xml:"offset,attr"`     // logical offset within the volume
	ImgOffset uint64 `xml:"img_offset,attr"` // physical offset within the image
	Length    uint64 `xml:"len,attr"`
}

// GetExecEnv retrieves runtime information to populate the ExecEnv struct.
func GetExecEnv(afs afero.Fs) ExecEnv {
	sinfo := sysinfo.Stat(afs)

	host, err := os.Hostname()
	if err != nil {
		host = "unknown_host"
	}

	uid := 0
	if currentUser, err := user.Current(); err == nil {
		if n, err := strconv.Atoi(currentUser.Uid); err == nil {
			uid = n
		}
	}

	return ExecEnv{
		OS:      sinfo.Name,
		Release: sinfo.Release,
		Version: sinfo.Version,
		Host:    host,
		Arch:    runtime.GOARCH,
		UID:     uid,
		Start:   time.Now().UTC().Format("2006-01-02T15:04:05Z"),
	}
}
