package dgus

import "kobrafw/protocol"

// RaisePopup queues a popup for the next idle loop pass
func (d *Driver) RaisePopup(p Popup) {
	d.popup = p
}

func (d *Driver) popupManager() {
	switch d.popup {
	case PopupT0Error:
		if d.pageNow != PageAbnormal {
			d.ChangePage(PageAbnormal)
		}
	case PopupFilamentLack, PopupFilamentLacking:
		if d.pageNow != PageFilamentLack {
			d.ChangePage(PageFilamentLack)
		}
	case PopupStopWait:
		d.ChangePage(PageWaitStop)
	case PopupPrintFinish:
		d.sendText(TxtFinishTime, protocol.FormatHoursMinutes(d.printer.ElapsedSeconds()/60))
		d.ChangePage(PagePrintFinish)
	case PopupLevelingDone:
		d.ChangePage(PageLevelingSettings)
	default:
		return
	}
	d.popup = PopupNone
}
