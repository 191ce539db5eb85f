package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type ABLParameters struct {
	Title     string  `yaml:"Title"`
	Imax      int     `yaml:"Imax"`
	Jmax      int     `yaml:"Jmax"`
	Kmax      int     `yaml:"Kmax"`
	XL        float64 `yaml:"XL"`
	YL        float64 `yaml:"YL"`
	ZL        float64 `yaml:"ZL"`
	ZSample   float64 `yaml:"ZSample"`
	HorizBCX  string  `yaml:"HorizBCX"` // periodic or inflow
	HorizBCY  string  `yaml:"HorizBCY"` // periodic or inflow
	MeanU     float64 `yaml:"MeanU"`
	MeanV     float64 `yaml:"MeanV"`
	Amplitude float64 `yaml:"Amplitude"` // sampling plane mode amplitude
	ModeX     int     `yaml:"ModeX"`     // sampling plane mode numbers
	ModeY     int     `yaml:"ModeY"`
	NSteps    int     `yaml:"NSteps"`
	Workers   int     `yaml:"Workers"`
	Scrambled bool    `yaml:"Scrambled"` // permute mesh storage order
}

func (ip *ABLParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *ABLParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%d x %d x %d\t\t= Grid dimensions\n", ip.Imax, ip.Jmax, ip.Kmax)
	fmt.Printf("%8.5f %8.5f %8.5f\t= Domain extents\n", ip.XL, ip.YL, ip.ZL)
	fmt.Printf("%8.5f\t\t= Sampling plane elevation\n", ip.ZSample)
	fmt.Printf("[%s, %s]\t= Horizontal boundary types\n", ip.HorizBCX, ip.HorizBCY)
	fmt.Printf("(%8.5f, %8.5f)\t= Mean horizontal velocity\n", ip.MeanU, ip.MeanV)
	fmt.Printf("%8.5f (%d, %d)\t= Sampling mode amplitude and numbers\n", ip.Amplitude, ip.ModeX, ip.ModeY)
	fmt.Printf("[%d]\t\t\t= Steps\n", ip.NSteps)
	fmt.Printf("[%d]\t\t\t= Workers\n", ip.Workers)
}
