package main

import (
	"context"
	"fmt"
	"log"
	"os"

	echoapi "github.com/tmasula/dnevnik/api/echo"
	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
	"github.com/tmasula/dnevnik/core/user"
	logsvc "github.com/tmasula/dnevnik/services/logger"
	"github.com/tmasula/dnevnik/storage/database"
	inmemdb "github.com/tmasula/dnevnik/storage/database/inmem"
	sqlxrepos "github.com/tmasula/dnevnik/storage/database/sqlx"
)

type repositories struct {
	user    user.Repository
	group   school.GroupRepository
	student school.StudentRepository
	teacher school.TeacherRepository
	subject school.SubjectRepository
	grade   school.GradeRepository
	close   func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
	)
	logger.Enable(!core.Conf.GetBool("debug"))

	if err := core.ValidateConfig(); err != nil {
		logger.Fatal(fmt.Sprintf("invalid configuration: %v", err), err)
	}

	repos, err := setUpRepositories()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err := repos.close(); err != nil {
			logger.Error("closing storage", err)
		}
	}()

	usrSvc := user.NewService(repos.user, logger)
	groupSvc := school.NewGroupService(repos.group, repos.student, logger)
	studentSvc := school.NewStudentService(repos.student, repos.group, repos.user, logger)
	teacherSvc := school.NewTeacherService(repos.teacher, repos.subject, repos.user, logger)
	subjectSvc := school.NewSubjectService(repos.subject, repos.teacher, repos.grade, logger)
	gradeSvc := school.NewGradeService(repos.grade, repos.student, repos.subject, repos.teacher, logger)

	// =========================================================================
	// Start API Service

	logger.Info("Application initializing")
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(
		&echoapi.Options{
			Address:    core.Conf.GetString("serverAddress"),
			Logger:     logger,
			UserSvc:    usrSvc,
			GroupSvc:   groupSvc,
			StudentSvc: studentSvc,
			TeacherSvc: teacherSvc,
			SubjectSvc: subjectSvc,
			GradeSvc:   gradeSvc,
		},
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.GetDuration("shutdownTimeout"))
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpRepositories() (*repositories, error) {
	if core.Conf.GetString("dbEngine") == "inmem" {
		db, err := inmemdb.Open()
		if err != nil {
			return nil, err
		}
		return &repositories{
			user:    inmemdb.NewUserRepository(db),
			group:   inmemdb.NewGroupRepository(db),
			student: inmemdb.NewStudentRepository(db),
			teacher: inmemdb.NewTeacherRepository(db),
			subject: inmemdb.NewSubjectRepository(db),
			grade:   inmemdb.NewGradeRepository(db),
			close:   func() error { return nil },
		}, nil
	}

	if err := database.CreateIfNotExist(); err != nil {
		return nil, err
	}
	db, err := database.Open()
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return &repositories{
		user:    sqlxrepos.NewUserRepository(db),
		group:   sqlxrepos.NewGroupRepository(db),
		student: sqlxrepos.NewStudentRepository(db),
		teacher: sqlxrepos.NewTeacherRepository(db),
		subject: sqlxrepos.NewSubjectRepository(db),
		grade:   sqlxrepos.NewGradeRepository(db),
		close:   db.Close,
	}, nil
}
