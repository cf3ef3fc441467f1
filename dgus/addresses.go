package dgus

// Page is a panel screen number
type Page uint16

const (
	PageAutoOffset        Page = 115
	PageMain              Page = 121
	PageFile              Page = 122
	PageStatus1           Page = 123 // paused, shows resume
	PageStatus2           Page = 124 // printing, shows pause
	PageAdjust            Page = 125
	PageKeyboard          Page = 126
	PageTool              Page = 127
	PageMove              Page = 128
	PageTemp              Page = 129
	PageSpeed             Page = 130
	PageSystemAudioOn     Page = 131
	PageWifi              Page = 132
	PageAbout             Page = 133
	PageRecord            Page = 134
	PagePrepare           Page = 135
	PageLevelingSettings  Page = 136
	PageZOffset           Page = 137
	PagePreheat           Page = 138
	PageFilament          Page = 139
	PageDone              Page = 140
	PageAbnormal          Page = 141
	PagePrintFinish       Page = 142
	PageWaitStop          Page = 143
	PageStopFailed        Page = 144
	PageFilamentLack      Page = 145
	PageForbid            Page = 146
	PageStopConfirm       Page = 147
	PagePauseFailed       Page = 148
	PageNoSD              Page = 149
	PageFilamentHeat      Page = 150
	PageStopWaiting       Page = 151
	PageWaitPause         Page = 152
	PageLevelEnsure       Page = 153
	PageLeveling          Page = 154
	PageSystemAudioOff    Page = 170
	PageOutageRecovery    Page = 173
	PageProbePreheating   Page = 175
	PageProbePreheating2  Page = 176
	PageHoming            Page = 189
	PageAbnormalBedHeater Page = 190
	PageAbnormalBedNTC    Page = 191
	PageAbnormalHotHeater Page = 192
	PageAbnormalHotNTC    Page = 193
	PageAbnormalXEndstop  Page = 194
	PageAbnormalYEndstop  Page = 195
	PageAbnormalZEndstop  Page = 196
	PageAbnormalProbe     Page = 199
	PageLevelingFailed    Page = 200
	PageProbePrecheck     Page = 204
	PageProbePrecheckOK   Page = 205
	PageProbePrecheckFail Page = 206
	PageToolCaseLight     Page = 209
	PagePrintingSetting   Page = 212
	PagePrinterStats      Page = 213
)

// Popup is a deferred page change raised outside the page handlers
type Popup uint8

const (
	PopupT0Error         Popup = 10
	PopupFilamentLack    Popup = 15
	PopupStopWait        Popup = 16
	PopupFilamentLacking Popup = 23
	PopupPrintFinish     Popup = 24
	PopupLevelingDone    Popup = 25
	PopupNone            Popup = 100
)

// Panel VP addresses
const (
	RegLCDReady = 0x0014

	KeyAddress = 0x1000
	keyMask    = 0xF000

	txtBase   = 0x2000
	txtStride = 0x30

	TxtMainBed     = 0x2000
	TxtMainHotend  = 0x2030
	TxtMainMessage = 0x2060

	TxtFile0     = txtBase + 3*txtStride
	TxtDescript0 = 0x5000

	TxtPrintName     = txtBase + 8*txtStride
	TxtPrintSpeed    = txtBase + 9*txtStride
	TxtPrintTime     = txtBase + 10*txtStride
	TxtPrintProgress = txtBase + 11*txtStride

	TxtAdjustHotend = txtBase + 14*txtStride
	TxtAdjustBed    = txtBase + 15*txtStride
	TxtAdjustSpeed  = txtBase + 16*txtStride

	TxtBedNow       = txtBase + 17*txtStride
	TxtBedTarget    = txtBase + 18*txtStride
	TxtHotendNow    = txtBase + 19*txtStride
	TxtHotendTarget = txtBase + 20*txtStride

	TxtFanSpeedNow      = txtBase + 21*txtStride
	TxtFanSpeedTarget   = txtBase + 22*txtStride
	TxtPrintSpeedNow    = txtBase + 23*txtStride
	TxtPrintSpeedTarget = txtBase + 24*txtStride

	TxtLevelOffset   = txtBase + 32*txtStride
	TxtFilamentTemp  = txtBase + 33*txtStride
	TxtFinishTime    = txtBase + 34*txtStride
	TxtPreheatHotend = txtBase + 36*txtStride
	TxtPreheatBed    = txtBase + 37*txtStride

	TxtPreheatHotendInput = 0x3000
	TxtPreheatBedInput    = 0x3002

	TxtOutageRecoveryFile = 0x2180

	AddrMoveDistance         = 0x4300
	AddrSystemLEDStatus      = 0x4500
	AddrPrintSettingLEDState = 0x4550

	TxtAboutDeviceName  = 0x2750
	TxtAboutFWVersion   = 0x2690
	TxtAboutPrintVolume = 0x2770
	TxtAboutTechSupport = 0x2790

	TxtStatsTotal    = 0x2690
	TxtStatsFinished = 0x2750
	TxtStatsFailed   = 0x2770
	TxtStatsTime     = 0x2790
	TxtStatsLongest  = 0x2810
	TxtStatsFilament = 0x2830
)

// Text box colors, RGB565
const (
	ColorRed   = 0xF800
	ColorBlue  = 0x0210
	ColorWhite = 0xFFFF
)

// LCD_READY values reported during the boot animation
const (
	lcdBootFirstFrame = 0x010000
	lcdBootLastFrame  = 0x010072
)

// FilesPerPage is the number of file boxes on the file page
const FilesPerPage = 5

func fileTextAddr(box int) uint16 {
	return uint16(TxtFile0 + box*txtStride)
}

func descriptAddr(box int) uint16 {
	return uint16(TxtDescript0 + box*txtStride)
}
