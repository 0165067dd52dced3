package main

import (
	"fmt"

	"github.com/mkuprys/gradefold/core/curriculum"
	"github.com/mkuprys/gradefold/core/student"
)

var missionRunFunc = runMission // mockable

func (cli *commandLine) createMission(studentID, title, mType, objectives, deadline string) error {
	m, err := missionRunFunc(cli, student.MissionInput{
		StudentID:  studentID,
		Title:      title,
		Type:       mType,
		Objectives: splitList(objectives),
		Deadline:   deadline,
	})
	if err != nil {
		return err
	}
	fmt.Printf("mission %s created: %s (%d objectives, %.1f missing points)\n",
		m.ID, m.Title, len(m.Objectives), m.MissingPointsInitial)
	return nil
}

func runMission(cli *commandLine, input student.MissionInput) (*curriculum.Mission, error) {
	svc := student.NewService(cli.conf, cli.repo, nil, cli.engine, cli.log)
	return svc.CreateMission(input)
}
